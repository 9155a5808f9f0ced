package firmata

import "fmt"

// Protocol version reported by REPORT_VERSION.
const (
	ProtocolMajorVersion  byte = 2
	ProtocolMinorVersion  byte = 5
	ProtocolBugfixVersion byte = 1
)

// Firmware version reported by REPORT_FIRMWARE.
const (
	FirmwareMajorVersion  byte = 2
	FirmwareMinorVersion  byte = 5
	FirmwareBugfixVersion byte = 6
)

// MaxSize is the capacity of FrameBuffer, which bounds a Sysex payload.
const MaxSize = 64

// Command is a command byte.
type Command byte

// Commands carrying a channel in the low nibble use the high nibble only.
const (
	DigitalMessage     Command = 0x90 // send data for a digital port (collection of 8 pins)
	ReportAnalog       Command = 0xC0 // enable analog input by pin #
	ReportDigital      Command = 0xD0 // enable digital input by port pair
	AnalogMessage      Command = 0xE0 // send data for an analog pin (or PWM)
	StartSysex         Command = 0xF0 // start a MIDI Sysex message
	SetPinMode         Command = 0xF4 // set a pin to INPUT/OUTPUT/PWM/etc
	SetDigitalPinValue Command = 0xF5 // set value of an individual digital pin
	EndSysex           Command = 0xF7 // end a MIDI Sysex message
	ReportVersion      Command = 0xF9 // report protocol version
	SystemReset        Command = 0xFF // reset from MIDI
)

var commandNames = map[Command]string{
	DigitalMessage:     "DigitalMessage",
	ReportAnalog:       "ReportAnalog",
	ReportDigital:      "ReportDigital",
	AnalogMessage:      "AnalogMessage",
	StartSysex:         "StartSysex",
	SetPinMode:         "SetPinMode",
	SetDigitalPinValue: "SetDigitalPinValue",
	EndSysex:           "EndSysex",
	ReportVersion:      "ReportVersion",
	SystemReset:        "SystemReset",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(0x%02X)", byte(c))
}

// HasChannel indicates the command carries a channel in the low nibble.
func (c Command) HasChannel() bool {
	return byte(c) < 0xF0
}

// argCount returns the number of argument bytes following the command
// byte, or 0 for commands without fixed arguments.
func (c Command) argCount() int {
	switch c {
	case AnalogMessage, DigitalMessage, SetPinMode, SetDigitalPinValue:
		return 2
	case ReportAnalog, ReportDigital:
		return 1
	}
	return 0
}

// SysexCommand is the first byte of a Sysex payload.
type SysexCommand byte

// Sysex sub-commands.
const (
	SerialData            SysexCommand = 0x60 // communicate with serial devices, including other boards
	EncoderData           SysexCommand = 0x61 // reply with encoders current positions
	AnalogMappingQuery    SysexCommand = 0x69 // ask for mapping of analog to pin numbers
	AnalogMappingResponse SysexCommand = 0x6A // reply with mapping info
	CapabilityQuery       SysexCommand = 0x6B // ask for supported modes and resolution of all pins
	CapabilityResponse    SysexCommand = 0x6C // reply with supported modes and resolution
	PinStateQuery         SysexCommand = 0x6D // ask for a pin's current mode and value
	PinStateResponse      SysexCommand = 0x6E // reply with pin's current mode and value
	ExtendedAnalog        SysexCommand = 0x6F // analog write (PWM, Servo, etc) to any pin
	ServoConfig           SysexCommand = 0x70 // set max angle, minPulse, maxPulse, freq
	StringData            SysexCommand = 0x71 // a string message with 14-bits per char
	StepperData           SysexCommand = 0x72 // control a stepper motor
	OneWireData           SysexCommand = 0x73 // OneWire read/write/reset/select/skip/search request
	ShiftData             SysexCommand = 0x75 // a bitstream to/from a shift register
	I2CRequest            SysexCommand = 0x76 // send an I2C read/write request
	I2CReply              SysexCommand = 0x77 // a reply to an I2C read request
	I2CConfig             SysexCommand = 0x78 // config I2C settings such as delay times and power pins
	ReportFirmware        SysexCommand = 0x79 // report name and version of the firmware
	SamplingInterval      SysexCommand = 0x7A // set the poll rate of the main loop
	SchedulerData         SysexCommand = 0x7B // createtask/deletetask/addtotask/schedule/querytasks/querytask
	SysexNonRealtime      SysexCommand = 0x7E // MIDI Reserved for non-realtime messages
	SysexRealtime         SysexCommand = 0x7F // MIDI Reserved for realtime messages
)

var sysexNames = map[SysexCommand]string{
	SerialData:            "SerialData",
	EncoderData:           "EncoderData",
	AnalogMappingQuery:    "AnalogMappingQuery",
	AnalogMappingResponse: "AnalogMappingResponse",
	CapabilityQuery:       "CapabilityQuery",
	CapabilityResponse:    "CapabilityResponse",
	PinStateQuery:         "PinStateQuery",
	PinStateResponse:      "PinStateResponse",
	ExtendedAnalog:        "ExtendedAnalog",
	ServoConfig:           "ServoConfig",
	StringData:            "StringData",
	StepperData:           "StepperData",
	OneWireData:           "OneWireData",
	ShiftData:             "ShiftData",
	I2CRequest:            "I2CRequest",
	I2CReply:              "I2CReply",
	I2CConfig:             "I2CConfig",
	ReportFirmware:        "ReportFirmware",
	SamplingInterval:      "SamplingInterval",
	SchedulerData:         "SchedulerData",
	SysexNonRealtime:      "NonRealtime",
	SysexRealtime:         "Realtime",
}

func (c SysexCommand) String() string {
	if name, ok := sysexNames[c]; ok {
		return name
	}
	return fmt.Sprintf("SysexCommand(0x%02X)", byte(c))
}

// PinMode is the mode of a pin.
type PinMode byte

// Pin modes.
const (
	PinModeInput   PinMode = 0x00 // same as INPUT defined in Arduino.h
	PinModeOutput  PinMode = 0x01 // same as OUTPUT defined in Arduino.h
	PinModeAnalog  PinMode = 0x02 // analog pin in analogInput mode
	PinModePWM     PinMode = 0x03 // digital pin in PWM output mode
	PinModeServo   PinMode = 0x04 // digital pin in Servo output mode
	PinModeShift   PinMode = 0x05 // shiftIn/shiftOut mode
	PinModeI2C     PinMode = 0x06 // pin included in I2C setup
	PinModeOneWire PinMode = 0x07 // pin configured for 1-wire
	PinModeStepper PinMode = 0x08 // pin configured for stepper motor
	PinModeEncoder PinMode = 0x09 // pin configured for rotary encoders
	PinModeSerial  PinMode = 0x0A // pin configured for serial communication
	PinModePullup  PinMode = 0x0B // enable internal pull-up resistor for pin
	PinModeIgnore  PinMode = 0x7F // pin configured to be ignored by digitalWrite and capabilityResponse
)

var pinModeNames = [...]string{
	"Input", "Output", "Analog", "PWM", "Servo", "Shift",
	"I2C", "OneWire", "Stepper", "Encoder", "Serial", "Pullup",
}

func (m PinMode) String() string {
	if int(m) < len(pinModeNames) {
		return pinModeNames[m]
	}
	if m == PinModeIgnore {
		return "Ignore"
	}
	return fmt.Sprintf("PinMode(0x%02X)", byte(m))
}

// ParsePinMode parses the name of a pin mode, case sensitive as returned
// by String.
func ParsePinMode(name string) (PinMode, bool) {
	for n, s := range pinModeNames {
		if s == name {
			return PinMode(n), true
		}
	}
	if name == "Ignore" {
		return PinModeIgnore, true
	}
	return 0, false
}
