// Package replication broadcasts saved topology documents to other
// rangecore instances over a mangos pub/sub change feed. The publisher
// side frames each saved document as a snappy-compressed JSON envelope;
// subscribers apply received documents to their local store.
package replication

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"

	"github.com/rangeops/rangecore/pkg/topology"
)

var (
	ErrNilDocument = errors.New("document cannot be nil")
	ErrBadEnvelope = errors.New("malformed change feed envelope")
	ErrFeedClosed  = errors.New("change feed is closed")
)

// topicTopology is the byte prefix mangos subscribers filter on.
var topicTopology = []byte("topology|")

// Envelope is a single change feed message.
type Envelope struct {
	ProjectID string             `json:"project_id"`
	SavedAt   time.Time          `json:"saved_at"`
	Document  *topology.Document `json:"document"`
}

// encodeEnvelope frames an envelope as topic prefix + snappy-compressed JSON.
func encodeEnvelope(doc *topology.Document) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	env := Envelope{
		ProjectID: doc.ProjectID,
		SavedAt:   time.Now().UTC(),
		Document:  doc,
	}

	raw, err := json.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	compressed := snappy.Encode(nil, raw)

	framed := make([]byte, 0, len(topicTopology)+len(compressed))
	framed = append(framed, topicTopology...)
	framed = append(framed, compressed...)
	return framed, nil
}

// decodeEnvelope reverses encodeEnvelope.
func decodeEnvelope(framed []byte) (*Envelope, error) {
	if !bytes.HasPrefix(framed, topicTopology) {
		return nil, fmt.Errorf("%w: missing topic prefix", ErrBadEnvelope)
	}

	raw, err := snappy.Decode(nil, framed[len(topicTopology):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Document == nil || env.ProjectID == "" {
		return nil, fmt.Errorf("%w: empty document or project", ErrBadEnvelope)
	}
	return &env, nil
}
