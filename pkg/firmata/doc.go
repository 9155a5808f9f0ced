// Package firmata provides the firmware side of the Firmata protocol.
package firmata

// Firmata is communicated between a host computer and a microcontroller
// over a serial link. Commands are framed MIDI style: a command byte has
// the high bit set and is followed by a fixed number of 7-bit argument
// bytes, or for Sysex, by a variable length 7-bit payload closed by an
// END_SYSEX byte.
//
// The Parser here is driven one byte at a time by the caller and uses a
// fixed size FrameBuffer, so it never allocates while collecting a
// command. Decoded commands are delivered synchronously to a Dispatcher.
// The Encoder builds replies onto the same stream.
//
// Producer: host
// Consumer: board firmware
