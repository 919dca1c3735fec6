package env

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/bno08x"
	fx "github.com/robotalks/imu.go/pkg/framework"
	"github.com/robotalks/imu.go/pkg/imu"
	"github.com/robotalks/imu.go/pkg/shtp"
	"github.com/robotalks/imu.go/pkg/shtp/trace"
	"github.com/robotalks/imu.go/pkg/shtp/transport"
	"github.com/robotalks/imu.go/pkg/shtp/transport/gpio"
	"github.com/robotalks/imu.go/pkg/shtp/transport/i2c"
	"github.com/robotalks/imu.go/pkg/shtp/transport/stream"
	"github.com/robotalks/imu.go/pkg/shtp/transport/uart"
	"github.com/robotalks/imu.go/pkg/shtp/transport/websocket"
	"github.com/robotalks/imu.go/pkg/telemetry/mqtt"
)

// Env holds everything opened from a Config.
type Env struct {
	Config    *Config
	Transport shtp.Transport
	Reset     shtp.ResetLine
	Tracer    *trace.Writer
	Client    *bno08x.Client

	closers []io.Closer
}

// Open opens the transport, the reset line and the trace file and
// creates the driver.
func (c *Config) Open() (*Env, error) {
	e := &Env{Config: c}
	if err := e.open(); err != nil {
		e.Close()
		return nil, err
	}
	e.Client = c.DriverConfig().NewClient(e.Transport)
	e.Client.Reset = e.Reset
	if e.Tracer != nil {
		e.Client.Tracer = e.Tracer
	}
	return e, nil
}

func (e *Env) open() error {
	tc := e.Config.Transport
	switch tc.Kind {
	case TransportUART:
		rw, port, err := uart.Open(tc.Device, uart.PortOptions{BaudRate: tc.Baud})
		if err != nil {
			return fmt.Errorf("open %s: %w", tc.Device, err)
		}
		e.closers = append(e.closers, port)
		e.Transport = transport.NewPackets(rw)
	case TransportI2C:
		num, err := strconv.Atoi(tc.Device)
		if err != nil {
			return fmt.Errorf("invalid I2C bus %q", tc.Device)
		}
		bus, err := i2c.Open(num, tc.Address)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, bus)
		e.Transport = i2c.NewDevice(bus)
	case TransportTCP:
		conn, err := net.Dial("tcp", tc.Device)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, conn)
		e.Transport = transport.NewPackets(stream.New(conn))
	case TransportWebSocket:
		rw, err := websocket.Dial(tc.Device)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, rw)
		e.Transport = transport.NewPackets(rw)
	case TransportReplay:
		r, err := trace.Open(tc.Device)
		if err != nil {
			return err
		}
		replay := trace.NewReplay(r)
		e.closers = append(e.closers, replay)
		e.Transport = transport.NewPackets(replay)
	default:
		return fmt.Errorf("unknown transport %q", tc.Kind)
	}
	glog.Infof("transport %s %s opened", tc.Kind, tc.Device)

	if tc.ResetGPIO >= 0 {
		pin, err := gpio.Open("", tc.ResetGPIO)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, pin)
		e.Reset = pin
	}
	if e.Config.TraceFile != "" {
		w, err := trace.Create(e.Config.TraceFile)
		if err != nil {
			return err
		}
		glog.Infof("trace session %s into %s", w.Session, e.Config.TraceFile)
		e.closers = append(e.closers, w)
		e.Tracer = w
	}
	return nil
}

// Close closes everything in reverse order of opening.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs.Add(e.closers[i].Close())
	}
	e.closers = nil
	return errs.Aggregate()
}

// ServiceFeatures resolves the configured reports.
func (c *Config) ServiceFeatures() ([]imu.Feature, error) {
	features := make([]imu.Feature, 0, len(c.Features))
	for _, f := range c.Features {
		id, ok := bno08x.ReportByName(f.Report)
		if !ok {
			return nil, fmt.Errorf("unknown report %q", f.Report)
		}
		features = append(features, imu.Feature{ID: id, Interval: f.Interval})
	}
	return features, nil
}

// NewService creates the orientation service on the driver.
func (e *Env) NewService() (*imu.Service, error) {
	features, err := e.Config.ServiceFeatures()
	if err != nil {
		return nil, err
	}
	s := imu.New(e.Client)
	s.Reset = e.Reset
	s.Features = features
	s.TelemetryPeriod = e.Config.MQTT.Period
	return s, nil
}

// NewPublisher creates the MQTT publisher, nil if telemetry is disabled.
func (e *Env) NewPublisher() (*mqtt.Publisher, error) {
	if e.Config.MQTT.URL == "" {
		return nil, nil
	}
	opts, prefix, err := mqtt.ClientOptionsFromURL(e.Config.MQTT.URL)
	if err != nil {
		return nil, fmt.Errorf("MQTT URL: %w", err)
	}
	if opts.ClientID == "" {
		opts.SetClientID("imu:" + e.Config.ID)
	}
	return mqtt.NewPublisher(mqtt.NewQueue(opts, prefix), e.Config.ID), nil
}
