package stream

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/albenik/go-serial/v2"
	"github.com/albenik/go-serial/v2/enumerator"
	"github.com/golang/glog"
)

// DefaultBaudRate is the baud rate of StandardFirmata.
const DefaultBaudRate = 57600

// ErrNoSerialPort indicates auto detection found no matching port.
var ErrNoSerialPort = errors.New("no matching USB serial port found")

// SerialConfig configures a serial port.
type SerialConfig struct {
	Device string
	Baud   int
	// VID and PID filter auto detected USB ports, empty matches any.
	VID string
	PID string
}

// SerialConfigFromURL parses serial:///dev/ttyUSB0?baud=57600 or
// serial://auto?vid=0403&pid=6015.
func SerialConfigFromURL(u *url.URL) (*SerialConfig, error) {
	conf := &SerialConfig{Device: u.Path, Baud: DefaultBaudRate}
	if u.Host != "" {
		if u.Host != "auto" {
			return nil, fmt.Errorf("invalid serial URL host %q", u.Host)
		}
		conf.Device = ""
	}
	q := u.Query()
	if val := q.Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return nil, fmt.Errorf("invalid baud rate %q", val)
		}
		conf.Baud = baud
	}
	conf.VID, conf.PID = strings.ToUpper(q.Get("vid")), strings.ToUpper(q.Get("pid"))
	return conf, nil
}

// OpenSerial opens a serial port from URL.
func OpenSerial(u *url.URL) (*serial.Port, error) {
	conf, err := SerialConfigFromURL(u)
	if err != nil {
		return nil, err
	}
	return conf.Open()
}

// FindUSBPort finds the first USB serial port matching VID and PID.
func (c *SerialConfig) FindUSBPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}
	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		if (c.VID == "" || strings.ToUpper(port.VID) == c.VID) &&
			(c.PID == "" || strings.ToUpper(port.PID) == c.PID) {
			return port.Name, nil
		}
	}
	return "", ErrNoSerialPort
}

// Open opens the serial port, detecting the device if not specified.
func (c *SerialConfig) Open() (*serial.Port, error) {
	device := c.Device
	if device == "" {
		found, err := c.FindUSBPort()
		if err != nil {
			return nil, err
		}
		device = found
		glog.Infof("found serial port %s", device)
	}
	port, err := serial.Open(device,
		serial.WithBaudrate(c.Baud),
		serial.WithDataBits(8),
		serial.WithParity(serial.NoParity),
		serial.WithStopBits(serial.OneStopBit),
	)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return port, nil
}
