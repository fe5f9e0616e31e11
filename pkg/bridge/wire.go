package bridge

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"

	"github.com/go-ferry/ferry/pkg/value"
)

// wireMessage is the per-message wire shape: one object per message,
// one array per batch. Priority is omitted when normal.
type wireMessage struct {
	Type     string      `json:"type" cbor:"type"`
	Payload  value.Value `json:"payload" cbor:"payload"`
	Priority string      `json:"priority,omitempty" cbor:"priority,omitempty"`
	Seq      uint64      `json:"seq" cbor:"seq"`
}

func toWire(b Batch) []wireMessage {
	msgs := make([]wireMessage, len(b))
	for i, e := range b {
		msgs[i] = wireMessage{
			Type:    e.Type,
			Payload: e.Payload,
			Seq:     e.Seq,
		}
		if e.Priority != PriorityNormal {
			msgs[i].Priority = e.Priority.String()
		}
	}
	return msgs
}

func fromWire(msgs []wireMessage) (Batch, error) {
	batch := make(Batch, len(msgs))
	for i, m := range msgs {
		pri, err := ParsePriority(m.Priority)
		if err != nil {
			return nil, err
		}
		batch[i] = &Envelope{
			Type:     m.Type,
			Payload:  m.Payload,
			Priority: pri,
			Seq:      m.Seq,
		}
	}
	return batch, nil
}

// BatchCodec converts batches to and from their wire frame. Transport
// implementations pick the codec; JSON is the compatibility format,
// CBOR the compact binary option for production channels.
type BatchCodec interface {
	// EncodeBatch frames a batch for the wire.
	EncodeBatch(b Batch) ([]byte, error)

	// DecodeBatch parses a wire frame back into a batch. Decoded
	// envelopes are plain allocations, not pooled.
	DecodeBatch(data []byte) (Batch, error)
}

// JSONCodec frames batches as a JSON array of message objects:
//
//	[{"type": string, "payload": <value>, "priority"?: "high"|"normal"|"low", "seq": integer}, ...]
type JSONCodec struct{}

// EncodeBatch implements BatchCodec.
func (JSONCodec) EncodeBatch(b Batch) ([]byte, error) {
	return json.Marshal(toWire(b))
}

// DecodeBatch implements BatchCodec.
func (JSONCodec) DecodeBatch(data []byte) (Batch, error) {
	var msgs []wireMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}
	return fromWire(msgs)
}

// CBORCodec frames batches as CBOR with the same field layout as
// JSONCodec.
type CBORCodec struct{}

// EncodeBatch implements BatchCodec.
func (CBORCodec) EncodeBatch(b Batch) ([]byte, error) {
	return cbor.Marshal(toWire(b))
}

// DecodeBatch implements BatchCodec.
func (CBORCodec) DecodeBatch(data []byte) (Batch, error) {
	var msgs []wireMessage
	if err := cbor.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}
	return fromWire(msgs)
}
