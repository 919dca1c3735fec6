//go:build !linux
// +build !linux

package i2c

import "errors"

// Open is only supported on Linux.
func Open(busNum int, addr uint16) (Bus, error) {
	return nil, errors.New("i2c-dev is not supported on this platform")
}
