package firmata

import "fmt"

type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) OnAnalogValue(ch byte, v uint16)      { r.add("analog(%d,%d)", ch, v) }
func (r *recorder) OnDigitalValue(port byte, v uint16)   { r.add("digital(%d,%d)", port, v) }
func (r *recorder) OnPinModeChange(pin byte, m PinMode)  { r.add("mode(%d,%s)", pin, m) }
func (r *recorder) OnDigitalPinValueSet(pin, v byte)     { r.add("pin(%d,%d)", pin, v) }
func (r *recorder) OnReportAnalogToggle(ch byte, e bool) { r.add("reportAnalog(%d,%v)", ch, e) }
func (r *recorder) OnReportDigitalToggle(p byte, e bool) { r.add("reportDigital(%d,%v)", p, e) }
func (r *recorder) OnReportVersionRequest()              { r.add("version()") }
func (r *recorder) OnSystemReset()                       { r.add("reset()") }
func (r *recorder) OnStringMessage(text string)          { r.add("string(%q)", text) }
func (r *recorder) OnVersionReport(major, minor byte)    { r.add("versionReport(%d,%d)", major, minor) }

func (r *recorder) OnFirmwareReport(major, minor byte, name string) {
	r.add("firmware(%d,%d,%q)", major, minor, name)
}

func (r *recorder) OnSysexCommand(cmd SysexCommand, data []byte) {
	r.add("sysex(%s,%v)", cmd, data)
}
