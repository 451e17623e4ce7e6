/*
Copyright 2011-2024 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package frame

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	runepress "github.com/runepress/runepress-go"
	"github.com/runepress/runepress-go/transform"
)

func testFrame() *Frame {
	return &Frame{
		Dictionary:  []string{"the ", " of ", "école", "🚀"},
		HuffSymbols: []byte{10, 65, 66, 255},
		HuffSizes:   []byte{3, 1, 3, 2},
		BitLen:      37,
		Payload:     []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x80},
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := testFrame()
	data, err := f.Marshal()

	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	g, err := Unmarshal(data)

	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(g.Dictionary) != len(f.Dictionary) {
		t.Fatalf("Dictionary count mismatch: %d != %d", len(g.Dictionary), len(f.Dictionary))
	}

	for i := range f.Dictionary {
		if g.Dictionary[i] != f.Dictionary[i] {
			t.Fatalf("Dictionary entry %d mismatch: %q != %q", i, g.Dictionary[i], f.Dictionary[i])
		}
	}

	if !bytes.Equal(g.HuffSymbols, f.HuffSymbols) || !bytes.Equal(g.HuffSizes, f.HuffSizes) {
		t.Fatalf("Huffman section mismatch")
	}

	if g.BitLen != f.BitLen || !bytes.Equal(g.Payload, f.Payload) {
		t.Fatalf("Payload mismatch")
	}
}

func TestFrameEmptySections(t *testing.T) {
	f := &Frame{BitLen: 0}
	data, err := f.Marshal()

	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	g, err := Unmarshal(data)

	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(g.Dictionary) != 0 || len(g.HuffSymbols) != 0 || g.BitLen != 0 || len(g.Payload) != 0 {
		t.Fatalf("Empty frame round trip mismatch")
	}
}

func TestFrameTruncation(t *testing.T) {
	f := testFrame()
	data, err := f.Marshal()

	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Any strict prefix must fail fast (the payload tail is bounds checked
	// against the declared bit length)
	for n := 0; n < len(data); n++ {
		if _, err := Unmarshal(data[0:n]); err == nil {
			t.Fatalf("Expected an error for a frame truncated to %d bytes", n)
		}
	}
}

func TestFrameOversizedDictionary(t *testing.T) {
	// A forged frame declaring more entries than any encoder can emit must
	// be rejected before its dictionary section is parsed
	count := transform.MAX_DICT_ENTRIES + 1
	data := make([]byte, 2+2*count)
	binary.BigEndian.PutUint16(data[0:2], uint16(count))

	_, err := Unmarshal(data)

	if err == nil {
		t.Fatalf("Expected an error for %d dictionary entries", count)
	}

	ce, ok := err.(*runepress.CodecError)

	if !ok || ce.ErrorCode() != runepress.ERR_INVALID_PARAM {
		t.Fatalf("Expected ERR_INVALID_PARAM, got %v", err)
	}

	f := &Frame{Dictionary: make([]string, count)}

	if _, err := f.Marshal(); err == nil {
		t.Fatalf("Expected Marshal to reject %d dictionary entries", count)
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	blob := []byte(strings.Repeat("some highly compressible content. ", 100))
	sealed, err := Seal(blob)

	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if len(sealed) >= len(blob) {
		t.Fatalf("Sealed frame is not smaller than a repetitive blob: %d >= %d", len(sealed), len(blob))
	}

	res, err := Open(sealed)

	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if !bytes.Equal(res, blob) {
		t.Fatalf("Seal/Open round trip mismatch")
	}

	// Trailing padding bytes are tolerated
	res, err = Open(append(sealed, 0))

	if err != nil || !bytes.Equal(res, blob) {
		t.Fatalf("Open failed with one byte of padding: %v", err)
	}
}

func TestOpenTruncated(t *testing.T) {
	sealed, err := Seal([]byte("payload"))

	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := Open(sealed[0:len(sealed)-1]); err == nil {
		t.Fatalf("Expected an error for a truncated outer frame")
	}

	_, err = Open([]byte{0, 0})

	if err == nil {
		t.Fatalf("Expected an error for a missing header")
	}

	ce, ok := err.(*runepress.CodecError)

	if !ok || ce.ErrorCode() != runepress.ERR_TRUNCATED_STREAM {
		t.Fatalf("Expected ERR_TRUNCATED_STREAM, got %v", err)
	}
}

func TestOpenCorrupt(t *testing.T) {
	sealed, err := Seal([]byte(strings.Repeat("data", 50)))

	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	for i := 4; i < len(sealed); i += 3 {
		sealed[i] ^= 0x55
	}

	if _, err := Open(sealed); err == nil {
		t.Fatalf("Expected an error for a corrupt compressed blob")
	}
}
