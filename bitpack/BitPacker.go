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

// Package bitpack maps byte buffers to and from strings over an arbitrary
// alphabet of size N, treating the alphabet as a base-N numeral system.
// Each symbol carries floor(log2(N)) payload bits.
package bitpack

import (
	"bytes"
	"math/bits"
	"strings"

	"github.com/icza/bitio"
	runepress "github.com/runepress/runepress-go"
)

// BitsPerSymbol returns the number of payload bits per alphabet symbol
func BitsPerSymbol(alphabetSize int) (byte, error) {
	if alphabetSize < 2 {
		return 0, runepress.NewCodecError("Bit packer: the alphabet needs at least 2 symbols", runepress.ERR_ALPHABET_TOO_SMALL)
	}

	return byte(bits.Len(uint(alphabetSize)) - 1), nil
}

// Pack treats the data as one large bit stream (most significant bit first
// per byte) and emits one alphabet symbol per group of BitsPerSymbol bits.
// A final group shorter than a full symbol is left shifted to fill one more
// symbol; the added padding bits carry no meaning and upstream framing makes
// the true payload size self describing.
func Pack(data []byte, alpha []rune) (string, error) {
	bps, err := BitsPerSymbol(len(alpha))

	if err != nil {
		return "", err
	}

	if len(data) == 0 {
		return "", nil
	}

	r := bitio.NewReader(bytes.NewReader(data))
	var sb strings.Builder
	remaining := uint64(len(data)) * 8

	for remaining > 0 {
		n := bps

		if remaining < uint64(bps) {
			n = byte(remaining)
		}

		v, err := r.ReadBits(n)

		if err != nil {
			return "", runepress.NewCodecError(err.Error(), runepress.ERR_PROCESS)
		}

		if n < bps {
			v <<= (bps - n)
		}

		sb.WriteRune(alpha[v])
		remaining -= uint64(n)
	}

	return sb.String(), nil
}

// Unpack reverses Pack: each symbol contributes BitsPerSymbol bits and
// completed bytes are emitted as they accumulate. Leftover sub byte bits at
// the end are discarded. A character outside the active alphabet fails with
// ERR_INVALID_SYMBOL, the primary symptom of a wrong key.
func Unpack(text string, alpha []rune) ([]byte, error) {
	bps, err := BitsPerSymbol(len(alpha))

	if err != nil {
		return nil, err
	}

	// Only the first 2^bps symbols can ever be emitted by Pack
	lookup := make(map[rune]uint64, 1<<bps)

	for i, cp := range alpha[0 : 1<<bps] {
		lookup[cp] = uint64(i)
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	total := uint64(0)

	for _, cp := range text {
		idx, ok := lookup[cp]

		if !ok {
			return nil, runepress.NewCodecError("Bit packer: symbol not in the active alphabet", runepress.ERR_INVALID_SYMBOL)
		}

		if err := w.WriteBits(idx, bps); err != nil {
			return nil, runepress.NewCodecError(err.Error(), runepress.ERR_PROCESS)
		}

		total += uint64(bps)
	}

	if err := w.Close(); err != nil {
		return nil, runepress.NewCodecError(err.Error(), runepress.ERR_PROCESS)
	}

	return buf.Bytes()[0 : total/8], nil
}
