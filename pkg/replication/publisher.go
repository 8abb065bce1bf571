package replication

import (
	"context"
	"log"
	"sync"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/rangeops/rangecore/pkg/metrics"
	"github.com/rangeops/rangecore/pkg/topology"
)

// Publisher broadcasts saved topology documents on a pub socket.
type Publisher struct {
	sock   mangos.Socket
	reg    *metrics.Registry
	mu     sync.Mutex
	closed bool
}

// NewPublisher opens a pub socket listening on addr
// (e.g. "tcp://0.0.0.0:7780" or "inproc://feed" in tests).
func NewPublisher(addr string, reg *metrics.Registry) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, err
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, err
	}
	return &Publisher{sock: sock, reg: reg}, nil
}

// Publish sends one saved document to all connected subscribers.
func (p *Publisher) Publish(doc *topology.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrFeedClosed
	}

	framed, err := encodeEnvelope(doc)
	if err != nil {
		if p.reg != nil {
			p.reg.RecordReplicationPublish("error", 0)
		}
		return err
	}

	if err := p.sock.Send(framed); err != nil {
		if p.reg != nil {
			p.reg.RecordReplicationPublish("error", 0)
		}
		return err
	}

	if p.reg != nil {
		p.reg.RecordReplicationPublish("success", len(framed))
	}
	return nil
}

// Close shuts the pub socket down. Publish returns ErrFeedClosed afterwards.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.sock.Close()
}

// PublishingStore decorates a topology.Store so every successful Save is
// also broadcast on the change feed. Publish failures are logged, not
// returned: the local save already committed.
type PublishingStore struct {
	topology.Store
	pub *Publisher
}

// NewPublishingStore wraps inner with feed publication.
func NewPublishingStore(inner topology.Store, pub *Publisher) *PublishingStore {
	return &PublishingStore{Store: inner, pub: pub}
}

// Save persists the document locally, then broadcasts it.
func (s *PublishingStore) Save(ctx context.Context, doc *topology.Document) error {
	if err := s.Store.Save(ctx, doc); err != nil {
		return err
	}
	if err := s.pub.Publish(doc); err != nil {
		log.Printf("replication: failed to publish save for project %s: %v", doc.ProjectID, err)
	}
	return nil
}
