// Package shtp implements the Sensor Hub Transport Protocol framing.
package shtp

// Every SHTP packet starts with a 4-byte header:
//
//	[0:2] little-endian byte count, including the header itself.
//	      Bit 15 is the continuation flag and is not part of the count.
//	[2]   channel number
//	[3]   sequence number, per channel and per direction
//
// A packet payload is a batch of one or more reports. Each report starts
// with its report ID, and the length of a report is implied by the ID, so
// splitting a batch requires a table of report lengths (Catalog).
//
// Producer: sensor hub firmware
// Consumer: host driver (package bno08x)
