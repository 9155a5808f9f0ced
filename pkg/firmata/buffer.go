package firmata

// FrameBuffer is a fixed capacity buffer accumulating the arguments or the
// Sysex payload of the command being parsed. The zero value holds MaxSize
// bytes without allocation.
type FrameBuffer struct {
	fixed [MaxSize]byte
	ext   []byte
	size  int
}

// NewFrameBuffer creates a FrameBuffer holding capacity bytes.
func NewFrameBuffer(capacity int) *FrameBuffer {
	b := &FrameBuffer{}
	b.SetCapacity(capacity)
	return b
}

func (b *FrameBuffer) storage() []byte {
	if b.ext != nil {
		return b.ext
	}
	return b.fixed[:]
}

// Cap returns the capacity.
func (b *FrameBuffer) Cap() int {
	return len(b.storage())
}

// SetCapacity changes the capacity and discards the content. Capacities up
// to MaxSize use the inline storage.
func (b *FrameBuffer) SetCapacity(capacity int) {
	if capacity > MaxSize {
		b.ext = make([]byte, capacity)
	} else {
		b.ext = nil
	}
	b.size = 0
}

// Len returns the number of bytes stored.
func (b *FrameBuffer) Len() int {
	return b.size
}

// Bytes returns the stored bytes. The slice aliases the buffer and is only
// valid until the next modification.
func (b *FrameBuffer) Bytes() []byte {
	return b.storage()[:b.size]
}

// At returns the byte at index i, or 0 if i is out of range.
func (b *FrameBuffer) At(i int) byte {
	if i < 0 || i >= b.size {
		return 0
	}
	return b.storage()[i]
}

// Append appends a byte, failing with ErrSysexOverflow when full.
func (b *FrameBuffer) Append(v byte) error {
	data := b.storage()
	if b.size >= len(data) {
		return ErrSysexOverflow
	}
	data[b.size] = v
	b.size++
	return nil
}

// Clear discards the content. Bytes are overwritten by later writes.
func (b *FrameBuffer) Clear() {
	b.size = 0
}
