package main

import (
	"github.com/robotalks/imu.go/pkg/bno08x"
	"github.com/robotalks/imu.go/pkg/cli/sh"
	"github.com/robotalks/imu.go/pkg/env"
)

func init() {
	env.SetupFlags()
	bno08x.SetupFlags()
}

func main() {
	sh.Main()
}
