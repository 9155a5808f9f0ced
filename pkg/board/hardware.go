package board

import (
	"errors"
	"sync"

	"github.com/robotalks/firmata.go/pkg/firmata"
)

var (
	// ErrNoSuchPin indicates the pin or channel doesn't exist on the board.
	ErrNoSuchPin = errors.New("no such pin")
	// ErrShortPayload indicates a Sysex payload misses required bytes.
	ErrShortPayload = errors.New("sysex payload too short")
	// ErrUnsupportedMode indicates the pin can't operate in the requested mode.
	ErrUnsupportedMode = errors.New("unsupported pin mode")
)

// Hardware provides access to the peripherals of a board.
type Hardware interface {
	SetPinMode(pin byte, mode firmata.PinMode) error
	DigitalWrite(pin byte, value byte) error
	DigitalRead(pin byte) (byte, error)
	// AnalogRead reads an ADC channel at the resolution of the ADC.
	AnalogRead(channel byte) (uint16, error)
	// PWMWrite writes duty for PWM pins, or pulse value for servo pins.
	PWMWrite(pin byte, value uint16) error
}

// SimHardware simulates pins in memory.
type SimHardware struct {
	Pins     int
	Channels int

	modes  map[byte]firmata.PinMode
	levels map[byte]byte
	duty   map[byte]uint16
	analog map[byte]uint16
	lock   sync.Mutex
}

// NewSimHardware creates SimHardware sized for the table.
func NewSimHardware(t *Table) *SimHardware {
	h := &SimHardware{
		Pins:   len(t.Pins),
		modes:  make(map[byte]firmata.PinMode),
		levels: make(map[byte]byte),
		duty:   make(map[byte]uint16),
		analog: make(map[byte]uint16),
	}
	for _, c := range t.Pins {
		if c.IsAnalog() && int(c.AnalogChannel) >= h.Channels {
			h.Channels = int(c.AnalogChannel) + 1
		}
	}
	return h
}

func (h *SimHardware) checkPin(pin byte) error {
	if int(pin) >= h.Pins {
		return ErrNoSuchPin
	}
	return nil
}

// SetPinMode implements Hardware.
func (h *SimHardware) SetPinMode(pin byte, mode firmata.PinMode) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.modes[pin] = mode
	if mode == firmata.PinModePullup {
		h.levels[pin] = 1
	}
	return nil
}

// DigitalWrite implements Hardware.
func (h *SimHardware) DigitalWrite(pin byte, value byte) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.levels[pin] = value & 1
	return nil
}

// DigitalRead implements Hardware.
func (h *SimHardware) DigitalRead(pin byte) (byte, error) {
	if err := h.checkPin(pin); err != nil {
		return 0, err
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.levels[pin], nil
}

// AnalogRead implements Hardware.
func (h *SimHardware) AnalogRead(channel byte) (uint16, error) {
	if int(channel) >= h.Channels {
		return 0, ErrNoSuchPin
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.analog[channel], nil
}

// PWMWrite implements Hardware.
func (h *SimHardware) PWMWrite(pin byte, value uint16) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.duty[pin] = value
	return nil
}

// SetLevel drives the level seen by DigitalRead.
func (h *SimHardware) SetLevel(pin byte, level byte) {
	h.lock.Lock()
	h.levels[pin] = level & 1
	h.lock.Unlock()
}

// SetAnalog sets the value seen by AnalogRead.
func (h *SimHardware) SetAnalog(channel byte, value uint16) {
	h.lock.Lock()
	h.analog[channel] = value
	h.lock.Unlock()
}

// Mode gets the mode last set on a pin.
func (h *SimHardware) Mode(pin byte) firmata.PinMode {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.modes[pin]
}

// Level gets the current level of a pin.
func (h *SimHardware) Level(pin byte) byte {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.levels[pin]
}

// Duty gets the last PWM/servo value written to a pin.
func (h *SimHardware) Duty(pin byte) uint16 {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.duty[pin]
}
