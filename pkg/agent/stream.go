package agent

import (
	"context"
	"errors"
)

// ErrStreamDone is returned by Stream.Next when the run has finished.
var ErrStreamDone = errors.New("agent: stream done")

// chanStream adapts a buffered channel of events into a Stream.
// Producers close done after the final send.
type chanStream struct {
	events <-chan Event
	errc   <-chan error
}

// NewChanStream wires producer channels into a Stream. The producer
// must close events when the run ends, and may send at most one error
// on errc before closing events.
func NewChanStream(events <-chan Event, errc <-chan error) Stream {
	return &chanStream{events: events, errc: errc}
}

func (s *chanStream) Next(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case ev, ok := <-s.events:
		if !ok {
			select {
			case err := <-s.errc:
				if err != nil {
					return Event{}, err
				}
			default:
			}
			return Event{}, ErrStreamDone
		}
		return ev, nil
	}
}

// sliceStream replays a fixed set of events. Used for runs that
// complete synchronously and in tests.
type sliceStream struct {
	events []Event
	pos    int
	err    error
}

// NewSliceStream returns a Stream that yields the given events in order
// and then terminates with err, or ErrStreamDone when err is nil.
func NewSliceStream(events []Event, err error) Stream {
	return &sliceStream{events: events, err: err}
}

func (s *sliceStream) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if s.pos >= len(s.events) {
		if s.err != nil {
			return Event{}, s.err
		}
		return Event{}, ErrStreamDone
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}
