package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/bno08x"
	"github.com/robotalks/imu.go/pkg/env"
	fx "github.com/robotalks/imu.go/pkg/framework"
)

var configFile string

func init() {
	env.SetupFlags()
	bno08x.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file, overrides flags.")
}

func loadConfig() (*env.Config, error) {
	if configFile != "" {
		return env.Load(configFile)
	}
	conf := env.NewConfig()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	conf.Normalize()
	return conf, nil
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := loadConfig()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	e, err := conf.Open()
	if err != nil {
		glog.Exitf("open: %v", err)
	}
	defer e.Close()

	svc, err := e.NewService()
	if err != nil {
		glog.Exit(err)
	}
	loop := fx.NewLoop().Add(svc)
	pub, err := e.NewPublisher()
	if err != nil {
		glog.Exit(err)
	}
	if pub != nil {
		loop.Add(pub)
	}

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("loop", loop))
	if err := runner.Wait(); err != nil {
		glog.Errorf("imud: %v", err)
	}
}
