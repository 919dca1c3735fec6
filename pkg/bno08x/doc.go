// Package bno08x is a driver for the BNO08x family of motion sensor hubs.
//
// A Client talks SHTP (package shtp) over a Transport. After Initialize,
// reports are enabled with EnableFeature and read back with the accessors
// (Quaternion, Acceleration, ...). Every accessor first drains the packets
// pending on the transport, so the values are the most recent ones the hub
// has sent. There is no background goroutine, the caller drives all I/O.
package bno08x
