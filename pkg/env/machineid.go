package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves an ID of the machine protected for the firmata app,
// falling back to the hostname.
func MachineID() string {
	id, err := machineid.ProtectedID("firmata")
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine ID unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "firmata"
}
