// Package fingerprint derives stable content identities for bridge
// values. Two structurally-equal values always produce the same
// fingerprint, regardless of object identity or the order object keys
// were inserted in. Fingerprints are the cache keys of the style
// transform cache and must therefore be deterministic across processes.
package fingerprint

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/go-ferry/ferry/pkg/value"
)

// Sum is a 64-bit content fingerprint.
type Sum uint64

// String returns the fingerprint as fixed-width hex.
func (s Sum) String() string {
	const width = 16
	hex := strconv.FormatUint(uint64(s), 16)
	for len(hex) < width {
		hex = "0" + hex
	}
	return hex
}

// Kind tags written into the canonical stream. Tagging keeps values of
// different kinds from colliding: the string "1" and the number 1 hash
// differently.
const (
	tagNull   = 'z'
	tagFalse  = 'f'
	tagTrue   = 't'
	tagNumber = 'n'
	tagString = 's'
	tagObject = 'o'
	tagArray  = 'a'
	tagEnd    = 'e'
)

// Of computes the fingerprint of a value by hashing its canonical byte
// serialization. Object keys are visited in sorted order so key order
// never affects identity. The input is not retained or mutated.
func Of(v value.Value) Sum {
	d := xxhash.New()
	writeCanonical(d, v)
	return Sum(d.Sum64())
}

func writeCanonical(d *xxhash.Digest, v value.Value) {
	switch v.Kind() {
	case value.KindNull:
		d.Write([]byte{tagNull})
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			d.Write([]byte{tagTrue})
		} else {
			d.Write([]byte{tagFalse})
		}
	case value.KindNumber:
		n, _ := v.AsNumber()
		var buf [9]byte
		buf[0] = tagNumber
		// Normalize -0 so it fingerprints like 0.
		if n == 0 {
			n = 0
		}
		binary.BigEndian.PutUint64(buf[1:], math.Float64bits(n))
		d.Write(buf[:])
	case value.KindString:
		s, _ := v.AsString()
		writeLenPrefixed(d, tagString, s)
	case value.KindObject:
		d.Write([]byte{tagObject})
		for _, k := range v.Keys() {
			writeLenPrefixed(d, tagString, k)
			f, _ := v.Get(k)
			writeCanonical(d, f)
		}
		d.Write([]byte{tagEnd})
	case value.KindArray:
		d.Write([]byte{tagArray})
		for i := 0; i < v.Len(); i++ {
			e, _ := v.Index(i)
			writeCanonical(d, e)
		}
		d.Write([]byte{tagEnd})
	}
}

// writeLenPrefixed writes tag, length, bytes. The length prefix keeps
// adjacent strings from colliding ("ab"+"c" vs "a"+"bc").
func writeLenPrefixed(d *xxhash.Digest, tag byte, s string) {
	var buf [9]byte
	buf[0] = tag
	binary.BigEndian.PutUint64(buf[1:], uint64(len(s)))
	d.Write(buf[:])
	d.WriteString(s)
}
