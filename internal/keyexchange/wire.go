// Package keyexchange hand-rolls the small slice of keyexchange.proto
// (ClientHello, APResponseMessage, ClientResponsePlaintext and their enums)
// that the handshake core needs. spec.md §9 explicitly allows either
// codegen or a hand-rolled encoder since the core's contract is the field
// names and values, not the bit layout of the generated bindings; this
// package takes the hand-rolled path, built on the same low-level wire
// primitives protoc-gen-go itself uses.
package keyexchange

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// appendMessage wraps an already-encoded submessage payload as a
// length-delimited field.
func appendMessage(dst []byte, field protowire.Number, payload []byte) []byte {
	if payload == nil {
		return dst
	}
	dst = protowire.AppendTag(dst, field, protowire.BytesType)
	dst = protowire.AppendBytes(dst, payload)
	return dst
}

func appendBytes(dst []byte, field protowire.Number, v []byte) []byte {
	if v == nil {
		return dst
	}
	dst = protowire.AppendTag(dst, field, protowire.BytesType)
	dst = protowire.AppendBytes(dst, v)
	return dst
}

func appendVarint(dst []byte, field protowire.Number, v uint64) []byte {
	dst = protowire.AppendTag(dst, field, protowire.VarintType)
	dst = protowire.AppendVarint(dst, v)
	return dst
}

// consumeFields walks the top-level fields of a message payload, invoking
// handle for each. handle returns the number of bytes it consumed from
// v (which starts right after the tag); it must consume the whole field
// value. Unknown fields are skipped automatically when handle returns
// (0, false).
func consumeFields(b []byte, handle func(field protowire.Number, typ protowire.Type, v []byte) (n int, handled bool, err error)) error {
	for len(b) > 0 {
		field, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return fmt.Errorf("keyexchange: invalid tag: %w", protowire.ParseError(tagLen))
		}
		rest := b[tagLen:]

		n, handled, err := handle(field, typ, rest)
		if err != nil {
			return err
		}
		if handled {
			b = rest[n:]
			continue
		}

		// Unknown field: skip it using the generic field-value consumer.
		skipLen := protowire.ConsumeFieldValue(field, typ, rest)
		if skipLen < 0 {
			return fmt.Errorf("keyexchange: invalid field %d: %w", field, protowire.ParseError(skipLen))
		}
		b = rest[skipLen:]
	}
	return nil
}

func consumeVarint(v []byte) (uint64, int, error) {
	val, n := protowire.ConsumeVarint(v)
	if n < 0 {
		return 0, 0, fmt.Errorf("keyexchange: invalid varint: %w", protowire.ParseError(n))
	}
	return val, n, nil
}

func consumeBytes(v []byte) ([]byte, int, error) {
	val, n := protowire.ConsumeBytes(v)
	if n < 0 {
		return nil, 0, fmt.Errorf("keyexchange: invalid bytes field: %w", protowire.ParseError(n))
	}
	// Copy: the backing array belongs to the read buffer.
	out := make([]byte, len(val))
	copy(out, val)
	return out, n, nil
}
