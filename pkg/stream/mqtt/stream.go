package mqtt

import (
	"context"
	"io"
	"sync"
)

// Stream implements io.ReadWriteCloser by publishing writes to PubTopic
// and reading payloads received from SubTopic in order.
type Stream struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	payloadCh chan []byte
	pending   []byte
	sub       *Subscription
	closeOnce sync.Once
	closed    chan struct{}
}

// NewStream creates a Stream.
func NewStream(q *Queue) *Stream {
	return &Stream{
		Queue:     q,
		payloadCh: make(chan []byte, 64),
		closed:    make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (s *Stream) WithTopics(sub, pub string) *Stream {
	s.SubTopic, s.PubTopic = sub, pub
	return s
}

// ForBoard sets topics using the convention for the board side:
// SubTopic = id/host
// PubTopic = id/board
func (s *Stream) ForBoard(id string) *Stream {
	return s.WithTopics(id+"/host", id+"/board")
}

// ForHost sets topics using the convention for the host side:
// SubTopic = id/board
// PubTopic = id/host
func (s *Stream) ForHost(id string) *Stream {
	return s.WithTopics(id+"/board", id+"/host")
}

// Open connects the Queue and subscribes SubTopic.
func (s *Stream) Open(ctx context.Context) error {
	if err := s.Queue.Connect(ctx); err != nil {
		return err
	}
	s.sub = s.Queue.Sub(s.SubTopic, s.handleMsg)
	return Wait(ctx, s.sub.Token)
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		select {
		case payload := <-s.payloadCh:
			s.pending = payload
		case <-s.closed:
			return 0, io.EOF
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	select {
	case <-s.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	payload := make([]byte, len(p))
	copy(payload, p)
	token := s.Queue.Pub(s.PubTopic, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.sub != nil {
			err = s.sub.Close()
		}
		s.Queue.Close()
	})
	return err
}

func (s *Stream) handleMsg(_ string, payload []byte) {
	if len(payload) == 0 {
		return
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	select {
	case s.payloadCh <- buf:
	case <-s.closed:
	}
}

// Publisher implements PacketWriter by publishing to a topic without
// waiting for delivery.
type Publisher struct {
	Queue *Queue
	Topic string
}

// WritePacket implements PacketWriter.
func (p *Publisher) WritePacket(pkt []byte) error {
	p.Queue.PubWith(p.Topic, pkt, 0, false)
	return nil
}
