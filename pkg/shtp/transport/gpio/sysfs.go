// Package gpio drives the hub reset line through the sysfs GPIO interface.
package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultRoot is where sysfs GPIO lives.
const DefaultRoot = "/sys/class/gpio"

// Pin is an output pin exported in sysfs.
// It implements shtp.ResetLine.
type Pin struct {
	Root string
	Num  int
}

// Open exports the pin when necessary and configures it as output, high.
func Open(root string, num int) (*Pin, error) {
	if root == "" {
		root = DefaultRoot
	}
	p := &Pin{Root: root, Num: num}
	if _, err := os.Stat(p.path()); os.IsNotExist(err) {
		if err := p.writeFile(filepath.Join(root, "export"), strconv.Itoa(num)); err != nil {
			return nil, fmt.Errorf("export gpio%d: %w", num, err)
		}
	}
	if err := p.writeFile(filepath.Join(p.path(), "direction"), "high"); err != nil {
		return nil, fmt.Errorf("gpio%d direction: %w", num, err)
	}
	return p, nil
}

func (p *Pin) path() string {
	return filepath.Join(p.Root, "gpio"+strconv.Itoa(p.Num))
}

func (p *Pin) writeFile(fn, val string) error {
	return os.WriteFile(fn, []byte(val), 0644)
}

// SetReset implements shtp.ResetLine.
func (p *Pin) SetReset(high bool) error {
	val := "0"
	if high {
		val = "1"
	}
	return p.writeFile(filepath.Join(p.path(), "value"), val)
}

// Close unexports the pin.
func (p *Pin) Close() error {
	return p.writeFile(filepath.Join(p.Root, "unexport"), strconv.Itoa(p.Num))
}
