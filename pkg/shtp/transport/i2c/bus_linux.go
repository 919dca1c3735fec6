//go:build linux
// +build linux

package i2c

import (
	"fmt"
	"os"
	"syscall"
)

const iocSLAVE uint = 0x0703

type bus struct {
	file *os.File
}

// Open opens /dev/i2c-N and selects the target address.
func Open(busNum int, addr uint16) (Bus, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/i2c-%d", busNum), os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}
	b := &bus{file: f}
	if errno := b.ioctl(iocSLAVE, uintptr(addr)); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("select address 0x%02x: %w", addr, errno)
	}
	return b, nil
}

func (b *bus) Read(p []byte) (int, error) {
	return b.file.Read(p)
}

func (b *bus) Write(p []byte) (int, error) {
	return b.file.Write(p)
}

func (b *bus) Close() error {
	return b.file.Close()
}

func (b *bus) ioctl(req uint, arg uintptr) syscall.Errno {
	_, _, err := syscall.Syscall(syscall.SYS_IOCTL, b.file.Fd(), uintptr(req), arg)
	return err
}
