package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/robotalks/imu.go/pkg/bno08x"
	"github.com/robotalks/imu.go/pkg/shtp"
	"github.com/robotalks/imu.go/pkg/shtp/trace"
)

var (
	session string
	channel = -1
	inOnly  bool
	decode  bool
)

func init() {
	flag.StringVar(&session, "session", session, "Only show packets of this session.")
	flag.IntVar(&channel, "channel", channel, "Only show packets on this channel, -1 for all.")
	flag.BoolVar(&inOnly, "in", inOnly, "Only show inbound packets.")
	flag.BoolVar(&decode, "decode", decode, "Decode sensor reports.")
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [options] TRACE-FILE\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	r, err := trace.Open(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}
	defer r.Close()
	r.Filter.Session = session
	if channel >= 0 {
		ch := shtp.Channel(channel)
		r.Filter.Channel = &ch
	}
	if inOnly {
		dir := shtp.Inbound
		r.Filter.Direction = &dir
	}
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Fatalln(err)
		}
		fmt.Println(rec)
		if decode && rec.Direction == shtp.Inbound {
			printReports(rec.Packet())
		}
	}
}

func printReports(pkt *shtp.Packet) {
	switch pkt.Channel {
	case shtp.ChannelControl, shtp.ChannelInputReports, shtp.ChannelWakeReports, shtp.ChannelGyroRotationVector:
	default:
		return
	}
	slices, err := shtp.Split(pkt.Data, bno08x.Catalog)
	for _, s := range slices {
		if reading, e := bno08x.Decode(s); e == nil {
			fmt.Printf("    %s: %+v\n", bno08x.ReportName(s.ID), reading)
		} else {
			fmt.Printf("    %s: %d bytes\n", bno08x.ReportName(s.ID), len(s.Data))
		}
	}
	if err != nil {
		fmt.Printf("    %v\n", err)
	}
}
