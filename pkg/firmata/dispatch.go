package firmata

// Dispatcher receives decoded commands from Parser.
//
// Callbacks are invoked synchronously from Parser.Feed. A callback may write
// replies with an Encoder but must not feed the same Parser.
type Dispatcher interface {
	// OnAnalogValue is called for ANALOG_MESSAGE with a 14-bit value.
	OnAnalogValue(channel byte, value uint16)
	// OnDigitalValue is called for DIGITAL_MESSAGE with the port value.
	OnDigitalValue(port byte, value uint16)
	// OnPinModeChange is called for SET_PIN_MODE.
	OnPinModeChange(pin byte, mode PinMode)
	// OnDigitalPinValueSet is called for SET_DIGITAL_PIN_VALUE.
	OnDigitalPinValueSet(pin byte, value byte)
	// OnReportAnalogToggle is called for REPORT_ANALOG.
	OnReportAnalogToggle(channel byte, enable bool)
	// OnReportDigitalToggle is called for REPORT_DIGITAL.
	OnReportDigitalToggle(port byte, enable bool)
	// OnReportVersionRequest is called for REPORT_VERSION.
	OnReportVersionRequest()
	// OnSystemReset is called after the parser is reset.
	OnSystemReset()
	// OnFirmwareReport is called for REPORT_FIRMWARE Sysex. A bare query
	// reports zero versions and an empty name.
	OnFirmwareReport(major, minor byte, name string)
	// OnStringMessage is called for STRING_DATA Sysex.
	OnStringMessage(text string)
	// OnSysexCommand is called for all other Sysex messages. data excludes
	// the sub-command byte and aliases the parser buffer, it's only valid
	// during the call.
	OnSysexCommand(cmd SysexCommand, data []byte)
}

// VersionReportHandler is optionally implemented by a Dispatcher used with
// a Parser expecting version replies (host side).
type VersionReportHandler interface {
	OnVersionReport(major, minor byte)
}

// NopDispatcher ignores all commands. It can be embedded to implement
// a subset of Dispatcher.
type NopDispatcher struct{}

// OnAnalogValue implements Dispatcher.
func (NopDispatcher) OnAnalogValue(byte, uint16) {}

// OnDigitalValue implements Dispatcher.
func (NopDispatcher) OnDigitalValue(byte, uint16) {}

// OnPinModeChange implements Dispatcher.
func (NopDispatcher) OnPinModeChange(byte, PinMode) {}

// OnDigitalPinValueSet implements Dispatcher.
func (NopDispatcher) OnDigitalPinValueSet(byte, byte) {}

// OnReportAnalogToggle implements Dispatcher.
func (NopDispatcher) OnReportAnalogToggle(byte, bool) {}

// OnReportDigitalToggle implements Dispatcher.
func (NopDispatcher) OnReportDigitalToggle(byte, bool) {}

// OnReportVersionRequest implements Dispatcher.
func (NopDispatcher) OnReportVersionRequest() {}

// OnSystemReset implements Dispatcher.
func (NopDispatcher) OnSystemReset() {}

// OnFirmwareReport implements Dispatcher.
func (NopDispatcher) OnFirmwareReport(byte, byte, string) {}

// OnStringMessage implements Dispatcher.
func (NopDispatcher) OnStringMessage(string) {}

// OnSysexCommand implements Dispatcher.
func (NopDispatcher) OnSysexCommand(SysexCommand, []byte) {}
