package sh

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/imu.go/pkg/bno08x"
)

var commands = []*ishell.Cmd{
	&OpenCmd,
	&CloseCmd,
	&ProductCmd,
	&ReportsCmd,
	&EnableCmd,
	&DisableCmd,
	&FeaturesCmd,
	&ReadCmd,
	&QuatCmd,
	&CalibrateCmd,
	&CalStatusCmd,
	&SaveCmd,
	&StateCmd,
}

func reportArg(c *ishell.Context) (bno08x.ReportID, bool) {
	if len(c.Args) < 1 {
		c.Err(fmt.Errorf("report name expected"))
		return 0, false
	}
	id, err := ParseReport(c.Args[0])
	if err != nil {
		c.Err(err)
		return 0, false
	}
	return id, true
}

func printResult(c *ishell.Context, v interface{}, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	ShellFrom(c).Print(c, v)
}

func okOrErr(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	c.Println("OK")
}

var (
	// OpenCmd opens and initializes the hub.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"init"},
		Help:    "reset and identify the hub",
		Func: func(c *ishell.Context) {
			okOrErr(c, ShellFrom(c).Open())
		},
	}

	// CloseCmd closes the hub.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "close the transport",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// ProductCmd prints the product ID.
	ProductCmd = ishell.Cmd{
		Name:    "product",
		Aliases: []string{"id"},
		Help:    "print product ID",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			id, ok := client.ProductID()
			if !ok {
				c.Err(bno08x.ErrNotReady)
				return
			}
			ShellFrom(c).Print(c, id)
		}),
	}

	// ReportsCmd lists report names.
	ReportsCmd = ishell.Cmd{
		Name: "reports",
		Help: "list sensor reports",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.OutputJSON {
				s.Print(c, ReportNames())
				return
			}
			for _, name := range ReportNames() {
				c.Println(name)
			}
		},
	}

	// EnableCmd enables a report.
	EnableCmd = ishell.Cmd{
		Name:    "enable",
		Aliases: []string{"en"},
		Help:    "REPORT [INTERVAL]",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			id, ok := reportArg(c)
			if !ok {
				return
			}
			fc := bno08x.FeatureConfig{Interval: client.Config.ReportInterval}
			if len(c.Args) > 1 {
				d, err := ParseInterval(c.Args[1])
				if err != nil {
					c.Err(err)
					return
				}
				fc.Interval = d
			}
			okOrErr(c, client.EnableFeatureWith(id, fc))
		}),
	}

	// DisableCmd disables a report.
	DisableCmd = ishell.Cmd{
		Name: "disable",
		Help: "REPORT",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			if id, ok := reportArg(c); ok {
				okOrErr(c, client.DisableFeature(id))
			}
		}),
	}

	// FeaturesCmd lists the features confirmed by the hub.
	FeaturesCmd = ishell.Cmd{
		Name: "features",
		Help: "list enabled reports",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			client.Poll()
			for id, fr := range client.Features() {
				c.Printf("%-32s %s\n", bno08x.ReportName(id), FormatValue(fr))
			}
		}),
	}

	// ReadCmd prints the latest reading of a report.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "REPORT",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			if id, ok := reportArg(c); ok {
				r, err := client.Reading(id)
				printResult(c, r, err)
			}
		}),
	}

	// QuatCmd prints the rotation vector in w, x, y, z order.
	QuatCmd = ishell.Cmd{
		Name:    "quat",
		Aliases: []string{"q"},
		Help:    "print rotation vector as w x y z",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			q, err := client.Quaternion()
			printResult(c, q.WXYZ(), err)
		}),
	}

	// CalibrateCmd starts calibration.
	CalibrateCmd = ishell.Cmd{
		Name: "calibrate",
		Help: "start accelerometer, gyroscope and magnetometer calibration",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			okOrErr(c, client.BeginCalibration())
		}),
	}

	// CalStatusCmd prints calibration status.
	CalStatusCmd = ishell.Cmd{
		Name:    "calstatus",
		Aliases: []string{"cs"},
		Help:    "print magnetometer accuracy and enabled calibration routines",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			acc, err := client.CalibrationStatus()
			if err != nil {
				c.Err(err)
				return
			}
			s := ShellFrom(c)
			s.Print(c, acc)
			s.Print(c, client.CalibrationRoutines())
		}),
	}

	// SaveCmd saves calibration data.
	SaveCmd = ishell.Cmd{
		Name: "save",
		Help: "save dynamic calibration data",
		Func: MustBeOpen(func(c *ishell.Context, client *bno08x.Client) {
			okOrErr(c, client.SaveCalibrationData())
		}),
	}

	// StateCmd prints the driver state.
	StateCmd = ishell.Cmd{
		Name: "state",
		Help: "print driver state",
		Func: func(c *ishell.Context) {
			client := ShellFrom(c).Client()
			if client == nil {
				c.Println("closed")
				return
			}
			c.Println(client.State().String())
		},
	}
)
