package replication

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/rangeops/rangecore/pkg/metrics"
	"github.com/rangeops/rangecore/pkg/topology"
)

// recvPollInterval bounds how long Run blocks in Recv before rechecking
// the context.
const recvPollInterval = 250 * time.Millisecond

// Subscriber applies documents from the change feed to a local store.
type Subscriber struct {
	sock   mangos.Socket
	store  topology.Store
	reg    *metrics.Registry
	mu     sync.Mutex
	closed bool
}

// NewSubscriber dials the publisher at addr and subscribes to the
// topology topic.
func NewSubscriber(addr string, store topology.Store, reg *metrics.Registry) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, err
	}
	if err := sock.SetOption(mangos.OptionSubscribe, topicTopology); err != nil {
		sock.Close()
		return nil, err
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, recvPollInterval); err != nil {
		sock.Close()
		return nil, err
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, err
	}
	return &Subscriber{sock: sock, store: store, reg: reg}, nil
}

// Run receives feed messages until ctx is canceled or the subscriber is
// closed. Malformed envelopes and failed applies are logged and skipped.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		framed, err := s.sock.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) {
				continue
			}
			if errors.Is(err, mangos.ErrClosed) {
				return nil
			}
			log.Printf("replication: recv failed: %v", err)
			continue
		}

		if err := s.apply(ctx, framed); err != nil {
			if s.reg != nil {
				s.reg.RecordReplicationApply("error")
			}
			log.Printf("replication: failed to apply message: %v", err)
			continue
		}
		if s.reg != nil {
			s.reg.RecordReplicationApply("success")
		}
	}
}

func (s *Subscriber) apply(ctx context.Context, framed []byte) error {
	env, err := decodeEnvelope(framed)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, env.Document)
}

// Close shuts the sub socket down; a running Run loop exits.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.sock.Close()
}
