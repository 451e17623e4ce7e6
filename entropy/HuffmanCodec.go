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

// Package entropy implements a static canonical Huffman coder over byte
// symbols. Only code lengths are persisted: the canonical construction lets
// the decoder rebuild the codes from the lengths alone.
package entropy

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/icza/bitio"
	runepress "github.com/runepress/runepress-go"
)

// Codes are accumulated in uint64 values. Reaching this depth would take a
// near Fibonacci frequency distribution over gigabytes of input.
const _HUF_MAX_CODE_LEN = 56

// HuffmanTable holds the canonical code assignment for the byte symbols
// present in a block.
type HuffmanTable struct {
	sizes   [256]byte
	codes   [256]uint64
	symbols []int // present symbols, sorted by (size, value)
}

// NewHuffmanTable computes code lengths from the byte frequencies of the
// block and derives the canonical codes. An empty block yields an empty
// table. A block with a single distinct symbol yields the degenerate one
// bit code.
func NewHuffmanTable(block []byte) (*HuffmanTable, error) {
	this := &HuffmanTable{}
	var freqs [256]int

	for _, b := range block {
		freqs[b]++
	}

	count := 0
	var alphabet [256]int

	for i := range freqs {
		if freqs[i] > 0 {
			alphabet[count] = i
			count++
		}
	}

	if count == 0 {
		return this, nil
	}

	this.symbols = make([]int, count)
	copy(this.symbols, alphabet[0:count])

	if count == 1 {
		// Degenerate but decodable: every bit maps to the same symbol
		this.sizes[this.symbols[0]] = 1
	} else {
		if err := computeCodeLengths(freqs[:], this.symbols, this.sizes[:]); err != nil {
			return nil, err
		}
	}

	if err := this.generateCanonicalCodes(); err != nil {
		return nil, err
	}

	return this, nil
}

// NewHuffmanTableFromSizes rebuilds the table transmitted as (symbol, code
// length) pairs, the decode side counterpart of NewHuffmanTable.
func NewHuffmanTableFromSizes(symbols []byte, sizes []byte) (*HuffmanTable, error) {
	if len(symbols) != len(sizes) {
		return nil, runepress.NewCodecError("Huffman codec: mismatched symbol and length counts", runepress.ERR_INVALID_PARAM)
	}

	this := &HuffmanTable{}
	this.symbols = make([]int, len(symbols))

	for i := range symbols {
		s := int(symbols[i])

		if sizes[i] == 0 || sizes[i] > _HUF_MAX_CODE_LEN {
			return nil, runepress.NewCodecError(fmt.Sprintf("Huffman codec: invalid code length %d for symbol %d", sizes[i], s), runepress.ERR_INVALID_CODE_LEN)
		}

		if this.sizes[s] != 0 {
			return nil, runepress.NewCodecError(fmt.Sprintf("Huffman codec: duplicate symbol %d", s), runepress.ERR_INVALID_PARAM)
		}

		this.sizes[s] = sizes[i]
		this.symbols[i] = s
	}

	if err := this.generateCanonicalCodes(); err != nil {
		return nil, err
	}

	return this, nil
}

// Sizes returns the (symbol, code length) pairs of the table in canonical
// order, ready for serialization.
func (this *HuffmanTable) Sizes() ([]byte, []byte) {
	symbols := make([]byte, len(this.symbols))
	sizes := make([]byte, len(this.symbols))

	for i, s := range this.symbols {
		symbols[i] = byte(s)
		sizes[i] = this.sizes[s]
	}

	return symbols, sizes
}

// generateCanonicalCodes sorts the symbols by (code length, symbol value)
// then assigns codes sequentially within a length level, shifting left on
// each length increase.
func (this *HuffmanTable) generateCanonicalCodes() error {
	if len(this.symbols) == 0 {
		return nil
	}

	sort.Slice(this.symbols, func(i, j int) bool {
		si := this.symbols[i]
		sj := this.symbols[j]

		if this.sizes[si] != this.sizes[sj] {
			return this.sizes[si] < this.sizes[sj]
		}

		return si < sj
	})

	code := uint64(0)
	curLen := this.sizes[this.symbols[0]]

	for _, s := range this.symbols {
		if this.sizes[s] > curLen {
			code <<= (this.sizes[s] - curLen)
			curLen = this.sizes[s]
		}

		if curLen > _HUF_MAX_CODE_LEN {
			return runepress.NewCodecError(fmt.Sprintf("Huffman codec: max code length (%d bits) exceeded", _HUF_MAX_CODE_LEN), runepress.ERR_INVALID_CODE_LEN)
		}

		this.codes[s] = code
		code++
	}

	return nil
}

// computeCodeLengths derives the optimal code lengths from the frequencies.
// Called only with 2 or more symbols.
// See [In-Place Calculation of Minimum-Redundancy Codes]
// by Alistair Moffat & Jyrki Katajainen
func computeCodeLengths(freqs []int, symbols []int, sizes []byte) error {
	count := len(symbols)
	ranks := make([]int, count)

	// Sort ranks by increasing freqs (first key) and increasing value
	// (second key) for deterministic tie breaking
	for i := range symbols {
		ranks[i] = (freqs[symbols[i]] << 8) | symbols[i]
	}

	sort.Ints(ranks)
	data := make([]int, count)

	for i := range ranks {
		data[i] = ranks[i] >> 8
		ranks[i] &= 0xFF
	}

	inPlaceSizesPhase1(data)
	maxCodeLen := inPlaceSizesPhase2(data)

	if maxCodeLen > _HUF_MAX_CODE_LEN {
		return runepress.NewCodecError(fmt.Sprintf("Huffman codec: max code length (%d bits) exceeded", _HUF_MAX_CODE_LEN), runepress.ERR_INVALID_CODE_LEN)
	}

	for i := range data {
		sizes[ranks[i]] = byte(data[i])
	}

	return nil
}

func inPlaceSizesPhase1(data []int) {
	n := len(data)

	for s, r, t := 0, 0, 0; t < n-1; t++ {
		sum := 0

		for i := 0; i < 2; i++ {
			if s >= n || (r < t && data[r] < data[s]) {
				sum += data[r]
				data[r] = t
				r++
				continue
			}

			sum += data[s]

			if s > t {
				data[s] = 0
			}

			s++
		}

		data[t] = sum
	}
}

// len(data) must be at least 2
func inPlaceSizesPhase2(data []int) int {
	if len(data) < 2 {
		return 0
	}

	levelTop := len(data) - 2 // root
	depth := 1
	i := len(data)
	totalNodesAtLevel := 2

	for i > 0 {
		k := levelTop

		for k > 0 && data[k-1] >= levelTop {
			k--
		}

		internalNodesAtLevel := levelTop - k
		leavesAtLevel := totalNodesAtLevel - internalNodesAtLevel

		for j := 0; j < leavesAtLevel; j++ {
			i--
			data[i] = depth
		}

		totalNodesAtLevel = internalNodesAtLevel << 1
		levelTop = k
		depth++
	}

	return depth - 1
}

// Encode emits the code of every block symbol most significant bit first
// and returns the packed bytes together with the exact bit count. The last
// byte is padded with zero bits; the bit count tells the decoder where the
// valid data ends.
func (this *HuffmanTable) Encode(block []byte) ([]byte, uint32, error) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bitCount := uint64(0)

	for _, b := range block {
		size := this.sizes[b]

		if size == 0 {
			return nil, 0, runepress.NewCodecError(fmt.Sprintf("Huffman codec: no code for symbol %d", b), runepress.ERR_MISSING_CODE)
		}

		if err := w.WriteBits(this.codes[b], size); err != nil {
			return nil, 0, err
		}

		bitCount += uint64(size)
	}

	if err := w.Close(); err != nil {
		return nil, 0, err
	}

	if bitCount > math.MaxUint32 {
		return nil, 0, runepress.NewCodecError("Huffman codec: output exceeds the frame bit length field", runepress.ERR_INVALID_PARAM)
	}

	return buf.Bytes(), uint32(bitCount), nil
}

// Decode consumes exactly bitLen bits from the payload, emitting one symbol
// every time the accumulated bits match a canonical code. Trailing padding
// bits beyond bitLen are ignored. Fails if the payload is exhausted or ends
// in the middle of a code.
func (this *HuffmanTable) Decode(payload []byte, bitLen uint32) ([]byte, error) {
	if bitLen == 0 {
		return []byte{}, nil
	}

	if len(this.symbols) == 0 {
		return nil, runepress.NewCodecError("Huffman codec: bits declared but the code table is empty", runepress.ERR_INVALID_PARAM)
	}

	if uint64(bitLen) > uint64(len(payload))*8 {
		return nil, runepress.NewCodecError("Huffman codec: bit length exceeds payload size", runepress.ERR_TRUNCATED_STREAM)
	}

	// Canonical decoding tables indexed by code length
	var firstCode [_HUF_MAX_CODE_LEN + 1]uint64
	var firstIndex [_HUF_MAX_CODE_LEN + 1]int
	var counts [_HUF_MAX_CODE_LEN + 1]int
	code := uint64(0)
	curLen := this.sizes[this.symbols[0]]
	firstCode[curLen] = 0
	firstIndex[curLen] = 0
	maxLen := curLen

	for i, s := range this.symbols {
		if this.sizes[s] > curLen {
			code <<= (this.sizes[s] - curLen)
			curLen = this.sizes[s]
			firstCode[curLen] = code
			firstIndex[curLen] = i
			maxLen = curLen
		}

		counts[curLen]++
		code++
	}

	r := bitio.NewReader(bytes.NewReader(payload))
	res := make([]byte, 0, len(payload))
	acc := uint64(0)
	accLen := byte(0)

	for consumed := uint32(0); consumed < bitLen; consumed++ {
		bit, err := r.ReadBits(1)

		if err != nil {
			return nil, runepress.NewCodecError("Huffman codec: truncated bitstream", runepress.ERR_TRUNCATED_STREAM)
		}

		acc = (acc << 1) | bit
		accLen++

		if accLen > maxLen {
			return nil, runepress.NewCodecError("Huffman codec: no code matches the bitstream", runepress.ERR_INVALID_PARAM)
		}

		if counts[accLen] == 0 || acc < firstCode[accLen] {
			continue
		}

		delta := acc - firstCode[accLen]

		if delta < uint64(counts[accLen]) {
			res = append(res, byte(this.symbols[firstIndex[accLen]+int(delta)]))
			acc = 0
			accLen = 0
		}
	}

	if accLen != 0 {
		return nil, runepress.NewCodecError("Huffman codec: bitstream ends in the middle of a code", runepress.ERR_TRUNCATED_STREAM)
	}

	return res, nil
}
