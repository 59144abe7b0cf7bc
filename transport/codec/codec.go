// Package codec provides serialization of delivery metadata, the only wire
// shape the bus exposes: {"eventId": string, "timestamp": number, "name": string},
// where timestamp is unix milliseconds.
//
// Supported formats:
//   - JSON (default, human-readable)
//   - MessagePack (binary, compact)
package codec

import (
	"errors"
	"time"

	"github.com/princecodes247/kamui/transport"
)

// Codec errors
var (
	ErrEncodeFailure = errors.New("failed to encode metadata")
	ErrDecodeFailure = errors.New("failed to decode metadata")
)

// Metadata is the metadata type handled by codecs
type Metadata = transport.Metadata

// Codec handles metadata serialization.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode serializes metadata to bytes.
	// Returns ErrEncodeFailure if serialization fails.
	Encode(meta Metadata) ([]byte, error)

	// Decode deserializes bytes to metadata.
	// Returns ErrDecodeFailure if deserialization fails.
	Decode(data []byte) (Metadata, error)

	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Name returns a short identifier for this codec (e.g., "json", "msgpack").
	Name() string
}

// Default returns the default codec (JSON)
func Default() Codec {
	return JSON{}
}

// wire is the shared wire form
type wire struct {
	EventID   string `json:"eventId" msgpack:"eventId"`
	Timestamp int64  `json:"timestamp" msgpack:"timestamp"`
	Name      string `json:"name" msgpack:"name"`
}

func toWire(m Metadata) wire {
	return wire{
		EventID:   m.EventID,
		Timestamp: m.Millis(),
		Name:      m.Name,
	}
}

func (w wire) metadata() Metadata {
	return Metadata{
		EventID:   w.EventID,
		Timestamp: time.UnixMilli(w.Timestamp),
		Name:      w.Name,
	}
}
