// Package sh provides an interactive shell to poke a sensor hub.
package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/imu.go/pkg/bno08x"
	"github.com/robotalks/imu.go/pkg/env"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *env.Config
	Env    *env.Env
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
)

var (
	evalOnly   bool
	outputJSON bool

	// ErrNotOpen is returned by commands before the hub is opened.
	ErrNotOpen = errors.New("not open, use open first")
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Open opens the transport and initializes the hub.
func (s *Shell) Open() error {
	s.Close()
	e, err := s.Config.Open()
	if err != nil {
		return err
	}
	if err := e.Client.Initialize(); err != nil {
		e.Close()
		return err
	}
	s.Env = e
	prompt := s.Config.Transport.Kind + " > "
	if id, ok := e.Client.ProductID(); ok {
		prompt = fmt.Sprintf("%d > ", id.PartNumber)
	}
	s.Shell.SetPrompt(prompt)
	return nil
}

// Close closes the hub.
func (s *Shell) Close() {
	if s.Env != nil {
		s.Env.Close()
		s.Env = nil
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Client returns the driver, nil if not open.
func (s *Shell) Client() *bno08x.Client {
	if s.Env == nil {
		return nil
	}
	return s.Env.Client
}

// MustBeOpen wraps command func requires an opened hub.
func MustBeOpen(fn func(c *ishell.Context, client *bno08x.Client)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		client := ShellFrom(c).Client()
		if client == nil {
			c.Err(ErrNotOpen)
			return
		}
		fn(c, client)
	}
}

// Print prints a value in text or JSON.
func (s *Shell) Print(c *ishell.Context, v interface{}) {
	if s.OutputJSON {
		if a, ok := v.(bno08x.Activity); ok {
			v = a.Map()
		}
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(FormatValue(v))
}

// FormatValue formats readings and other results for display.
func FormatValue(v interface{}) string {
	switch r := v.(type) {
	case bno08x.Vector3:
		return fmt.Sprintf("x=%.4f y=%.4f z=%.4f accuracy=%s", r.X, r.Y, r.Z, r.Accuracy)
	case bno08x.Quaternion:
		return fmt.Sprintf("i=%.4f j=%.4f k=%.4f real=%.4f accuracy=%s", r.I, r.J, r.K, r.Real, r.Accuracy)
	case bno08x.RawVector:
		return fmt.Sprintf("x=%d y=%d z=%d", r.X, r.Y, r.Z)
	case bno08x.Activity:
		var b strings.Builder
		b.WriteString(r.MostLikely.String())
		for k, conf := range r.Confidence {
			if conf > 0 {
				fmt.Fprintf(&b, " %s=%d%%", bno08x.ActivityKind(k), conf)
			}
		}
		return b.String()
	case bno08x.MECalibration:
		return fmt.Sprintf("accel=%v gyro=%v mag=%v planar=%v on-table=%v",
			r.Accel, r.Gyro, r.Mag, r.Planar, r.OnTable)
	case bno08x.FeatureResponse:
		return fmt.Sprintf("interval=%dus batch=%dus sensitivity=%d config=0x%x",
			r.ReportInterval, r.BatchInterval, r.ChangeSensitivity, r.SensorConfig)
	case fmt.Stringer:
		return r.String()
	}
	return fmt.Sprint(v)
}

// ParseReport parses a report name or number.
func ParseReport(arg string) (bno08x.ReportID, error) {
	if id, ok := bno08x.ReportByName(arg); ok {
		return id, nil
	}
	var n uint8
	if _, err := fmt.Sscanf(arg, "0x%x", &n); err == nil {
		if _, ok := bno08x.Catalog.ReportLength(bno08x.ReportID(n)); ok {
			return bno08x.ReportID(n), nil
		}
	}
	return 0, fmt.Errorf("unknown report %q", arg)
}

// ParseInterval parses an interval as a duration or milliseconds.
func ParseInterval(arg string) (time.Duration, error) {
	if d, err := time.ParseDuration(arg); err == nil {
		return d, nil
	}
	var ms int
	if _, err := fmt.Sscanf(arg, "%d", &ms); err != nil || ms < 0 {
		return 0, fmt.Errorf("invalid interval %q", arg)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// ReportNames lists sensor report names sorted.
func ReportNames() []string {
	var names []string
	for _, id := range bno08x.SensorReports() {
		names = append(names, bno08x.ReportName(id))
	}
	sort.Strings(names)
	return names
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if len(args) > 0 {
		if args[0] != "open" {
			if err := s.Open(); err != nil {
				log.Fatalf("open: %v", err)
			}
		}
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).Run(flag.Args()...)
}
