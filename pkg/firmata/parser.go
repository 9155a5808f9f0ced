package firmata

// Parser decodes commands from bytes received.
//
// A Parser must be confined to a single goroutine. The zero value is ready
// to use and discards all commands until Dispatcher is set.
type Parser struct {
	Dispatcher Dispatcher
	// ExpectVersionReply makes REPORT_VERSION take two argument bytes
	// (major, minor), which is how replies look on the host side.
	ExpectVersionReply bool
	// MaxSysexSize overrides the Sysex buffer capacity when larger than
	// MaxSize. Hosts need it for capability responses.
	MaxSysexSize int

	state   ParseMode
	command Command
	channel byte
	pending int
	buf     FrameBuffer
}

// ParseMode is the mode of the parser state machine.
type ParseMode int

const (
	// ModeCommand is waiting for a command byte.
	ModeCommand ParseMode = iota
	// ModeArguments is collecting argument bytes of a multi-byte command.
	ModeArguments
	// ModeSysex is collecting a Sysex payload until END_SYSEX.
	ModeSysex
)

func (m ParseMode) String() string {
	switch m {
	case ModeCommand:
		return "command"
	case ModeArguments:
		return "arguments"
	case ModeSysex:
		return "sysex"
	}
	return "invalid"
}

// NewParser creates a Parser with a Dispatcher.
func NewParser(d Dispatcher) *Parser {
	return &Parser{Dispatcher: d}
}

// Mode gets the current mode.
func (p *Parser) Mode() ParseMode {
	return p.state
}

// Reset discards any partially parsed command and notifies the
// Dispatcher with OnSystemReset.
func (p *Parser) Reset() {
	p.abort()
	p.channel = 0
	p.dispatcher().OnSystemReset()
}

// Feed consumes one byte. A non-nil error is always a *ParseError: the
// command in progress is dropped and parsing continues with the next byte.
func (p *Parser) Feed(b byte) error {
	switch p.state {
	case ModeSysex:
		if Command(b) == EndSysex {
			p.state = ModeCommand
			return p.processSysex()
		}
		if err := p.buf.Append(b); err != nil {
			return p.fail(err)
		}
	case ModeArguments:
		if b >= 0x80 {
			// resync: the byte starts a new command.
			err := p.fail(ErrUnexpectedCommandByte)
			p.parseCommand(b)
			return err
		}
		p.buf.Append(b)
		if p.pending--; p.pending == 0 {
			p.state = ModeCommand
			p.dispatchArguments()
		}
	default:
		p.parseCommand(b)
	}
	return nil
}

// Write feeds all bytes in order. It always consumes the whole input and
// returns the first parse error if any, so the result doesn't depend on
// how bytes are chunked.
func (p *Parser) Write(data []byte) (int, error) {
	var first error
	for _, b := range data {
		if err := p.Feed(b); err != nil && first == nil {
			first = err
		}
	}
	return len(data), first
}

func (p *Parser) dispatcher() Dispatcher {
	if p.Dispatcher == nil {
		return NopDispatcher{}
	}
	return p.Dispatcher
}

func (p *Parser) parseCommand(b byte) {
	cmd := Command(b)
	if cmd.HasChannel() {
		cmd, p.channel = Command(b&0xF0), b&0x0F
	}
	n := cmd.argCount()
	if cmd == ReportVersion && p.ExpectVersionReply {
		n = 2
	}
	switch {
	case n > 0:
		p.command, p.pending, p.state = cmd, n, ModeArguments
		p.buf.Clear()
	case cmd == StartSysex:
		p.command, p.state = cmd, ModeSysex
		if n := p.MaxSysexSize; n > MaxSize && n != p.buf.Cap() {
			p.buf.SetCapacity(n)
		}
		p.buf.Clear()
	case cmd == SystemReset:
		p.Reset()
	case cmd == ReportVersion:
		p.dispatcher().OnReportVersionRequest()
	}
}

func (p *Parser) dispatchArguments() {
	cmd, d := p.command, p.dispatcher()
	p.command = 0
	lsb, msb := p.buf.At(0), p.buf.At(1)
	switch cmd {
	case AnalogMessage:
		d.OnAnalogValue(p.channel, DecodeTwoByte(lsb, msb))
	case DigitalMessage:
		d.OnDigitalValue(p.channel, DecodeTwoByte(lsb, msb))
	case SetPinMode:
		d.OnPinModeChange(lsb, PinMode(msb))
	case SetDigitalPinValue:
		d.OnDigitalPinValueSet(lsb, msb)
	case ReportAnalog:
		d.OnReportAnalogToggle(p.channel, lsb != 0)
	case ReportDigital:
		d.OnReportDigitalToggle(p.channel, lsb != 0)
	case ReportVersion:
		if h, ok := d.(VersionReportHandler); ok {
			h.OnVersionReport(lsb, msb)
		}
	}
}

func (p *Parser) processSysex() error {
	p.command = 0
	data := p.buf.Bytes()
	if len(data) == 0 {
		return nil
	}
	d, cmd := p.dispatcher(), SysexCommand(data[0])
	switch cmd {
	case ReportFirmware:
		// bare query used before Firmata 3.0.
		if len(data) < 3 {
			d.OnFirmwareReport(0, 0, "")
			return nil
		}
		name, err := DecodeString(data[3:])
		if err != nil {
			return &ParseError{Command: StartSysex, Sysex: cmd, Err: err}
		}
		d.OnFirmwareReport(data[1], data[2], name)
	case StringData:
		text, err := DecodeString(data[1:])
		if err != nil {
			return &ParseError{Command: StartSysex, Sysex: cmd, Err: err}
		}
		d.OnStringMessage(text)
	default:
		d.OnSysexCommand(cmd, data[1:])
	}
	return nil
}

func (p *Parser) fail(err error) error {
	pe := &ParseError{Command: p.command, Err: err}
	if p.command == StartSysex && p.buf.Len() > 0 {
		pe.Sysex = SysexCommand(p.buf.At(0))
	}
	p.abort()
	return pe
}

func (p *Parser) abort() {
	p.state, p.command, p.pending = ModeCommand, 0, 0
	p.buf.Clear()
}
