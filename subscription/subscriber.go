package subscription

import (
	"context"
	"io"
	"sync"

	"github.com/streamingfast/substreams-pcs-pricing/state"
)

type Subscriber struct {
	input     chan state.StateDelta
	closeOnce sync.Once
}

func NewSubscriber() *Subscriber {
	return &Subscriber{
		input: make(chan state.StateDelta, 100),
	}
}

// Next returns the next delta, io.EOF once the subscriber was removed from
// the hub and everything sent before was read.
func (s *Subscriber) Next(ctx context.Context) (*state.StateDelta, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case next, ok := <-s.input:
		if !ok {
			return nil, io.EOF
		}
		return &next, nil
	}
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.input)
	})
}
