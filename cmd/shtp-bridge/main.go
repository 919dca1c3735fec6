package main

import (
	"flag"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/shtp/transport/uart"
	"github.com/robotalks/imu.go/pkg/shtp/transport/websocket"
)

var (
	device   = "/dev/ttyS0"
	baudRate = uart.DefaultBaudRate
	listen   = ":8080"
	path     = "/shtp"
)

func init() {
	flag.StringVar(&device, "dev", device, "Serial device of the sensor hub.")
	flag.IntVar(&baudRate, "baud", baudRate, "Serial baud rate.")
	flag.StringVar(&listen, "listen", listen, "Listening address.")
	flag.StringVar(&path, "path", path, "Websocket path.")
}

func main() {
	flag.Parse()
	rw, port, err := uart.Open(device, uart.PortOptions{BaudRate: baudRate})
	if err != nil {
		glog.Exitf("open %s: %v", device, err)
	}
	defer port.Close()
	http.Handle(path, websocket.NewBridge(rw).Handler())
	glog.Infof("bridging %s on %s%s", device, listen, path)
	if err := http.ListenAndServe(listen, nil); err != nil {
		glog.Exit(err)
	}
}
