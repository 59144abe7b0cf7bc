package codec

import (
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack implements Codec using MessagePack serialization.
// Field names match the JSON form.
type MsgPack struct{}

// Encode serializes metadata to MessagePack bytes
func (c MsgPack) Encode(meta Metadata) ([]byte, error) {
	data, err := msgpack.Marshal(toWire(meta))
	if err != nil {
		return nil, errors.Join(ErrEncodeFailure, err)
	}
	return data, nil
}

// Decode deserializes MessagePack bytes to metadata
func (c MsgPack) Decode(data []byte) (Metadata, error) {
	var w wire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return Metadata{}, errors.Join(ErrDecodeFailure, err)
	}
	return w.metadata(), nil
}

// ContentType returns the MIME type for MessagePack
func (c MsgPack) ContentType() string {
	return "application/msgpack"
}

// Name returns the codec identifier
func (c MsgPack) Name() string {
	return "msgpack"
}

// Compile-time check
var _ Codec = MsgPack{}
