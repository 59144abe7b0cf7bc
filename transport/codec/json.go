package codec

import (
	"encoding/json"
	"errors"
)

// JSON implements Codec using JSON serialization.
// This is the default codec, providing human-readable output.
type JSON struct{}

// Encode serializes metadata to JSON bytes
func (c JSON) Encode(meta Metadata) ([]byte, error) {
	data, err := json.Marshal(toWire(meta))
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return data, nil
}

// Decode deserializes JSON bytes to metadata
func (c JSON) Decode(data []byte) (Metadata, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Metadata{}, errors.Join(ErrDecodeFailure, err)
	}
	return w.metadata(), nil
}

// ContentType returns the MIME type for JSON
func (c JSON) ContentType() string {
	return "application/json"
}

// Name returns the codec identifier
func (c JSON) Name() string {
	return "json"
}

// Compile-time check
var _ Codec = JSON{}
