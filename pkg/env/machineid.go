package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves the unique ID of the machine.
// The host name is used when it's not available.
func MachineID() string {
	id, err := machineid.ID()
	if err == nil {
		return id
	}
	glog.Warningf("machine ID: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "imu"
}
