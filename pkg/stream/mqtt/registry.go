package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// BoardMeta is published retained to ID/meta while a board is online.
type BoardMeta struct {
	Board    string `json:"board,omitempty"`
	Firmware string `json:"firmware,omitempty"`
	Version  string `json:"version,omitempty"`
}

// BoardInfo is a discovered board.
type BoardInfo struct {
	ID   string
	Meta BoardMeta
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewBoardQueue creates a Queue for a board, with a will clearing the
// retained meta when the board disconnects unexpectedly.
func NewBoardQueue(brokerURL, id string, meta BoardMeta) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+id+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("firmata:" + id)
	}
	q := NewQueue(opts, topicPrefix)
	q.OnConnect = func(q *Queue) {
		q.PubWith(id+"/meta", payload, 1, true)
	}
	return q, nil
}

// Unregister clears the retained meta of a board.
func Unregister(ctx context.Context, q *Queue, id string) error {
	return Wait(ctx, q.PubWith(id+"/meta", nil, 1, true))
}

// Discover collects boards announcing meta until timeout.
func Discover(ctx context.Context, q *Queue, timeout time.Duration) ([]BoardInfo, error) {
	resCh := make(chan BoardInfo, 16)
	sub := q.Sub("+/meta", func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		if len(items) != 2 || len(payload) == 0 {
			return
		}
		info := BoardInfo{ID: items[0]}
		if json.Unmarshal(payload, &info.Meta) != nil {
			return
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	})
	defer sub.Close()

	if timeout == 0 {
		timeout = DefaultDiscoverTimeout
	}
	expire := time.After(timeout)
	var res []BoardInfo
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-expire:
			return res, nil
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}
