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

package entropy

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	runepress "github.com/runepress/runepress-go"
)

func TestHuffmanRoundTrip(t *testing.T) {
	if err := testHuffmanCorrectness(); err != nil {
		t.Errorf(err.Error())
	}
}

func testHuffmanCorrectness() error {
	rnd := rand.New(rand.NewSource(1234))
	blocks := make([][]byte, 0, 16)
	blocks = append(blocks, []byte("the cat sat on the mat"))
	blocks = append(blocks, []byte("a"))
	blocks = append(blocks, bytes.Repeat([]byte{42}, 100))
	blocks = append(blocks, []byte(strings.Repeat("the quick brown fox", 50)))

	// Random distributions
	for i := 0; i < 8; i++ {
		block := make([]byte, 10+rnd.Intn(5000))

		for j := range block {
			block[j] = byte(rnd.Intn(5 + i*30))
		}

		blocks = append(blocks, block)
	}

	for _, block := range blocks {
		table, err := NewHuffmanTable(block)

		if err != nil {
			return err
		}

		payload, bitLen, err := table.Encode(block)

		if err != nil {
			return err
		}

		// Rebuild the decode side table from the transmitted lengths only
		symbols, sizes := table.Sizes()
		table2, err := NewHuffmanTableFromSizes(symbols, sizes)

		if err != nil {
			return err
		}

		res, err := table2.Decode(payload, bitLen)

		if err != nil {
			return err
		}

		if !bytes.Equal(res, block) {
			return runepress.NewCodecError("Decoded block does not match the input", runepress.ERR_UNKNOWN)
		}
	}

	return nil
}

func TestHuffmanPrefixFree(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))

	for test := 0; test < 20; test++ {
		block := make([]byte, 2000)

		for j := range block {
			block[j] = byte(rnd.Intn(1 + test*12))
		}

		table, err := NewHuffmanTable(block)

		if err != nil {
			t.Fatalf("Table build failed: %v", err)
		}

		// Every symbol with nonzero frequency gets exactly one code and
		// no code is a prefix of another
		var freqs [256]int

		for _, b := range block {
			freqs[b]++
		}

		for i := range freqs {
			if (freqs[i] > 0) != (table.sizes[i] > 0) {
				t.Fatalf("Symbol %d presence mismatch", i)
			}
		}

		for _, s1 := range table.symbols {
			for _, s2 := range table.symbols {
				if s1 == s2 {
					continue
				}

				l1 := table.sizes[s1]
				l2 := table.sizes[s2]

				if l1 > l2 {
					continue
				}

				if table.codes[s1] == table.codes[s2]>>(l2-l1) {
					t.Fatalf("Code of symbol %d is a prefix of the code of symbol %d", s1, s2)
				}
			}
		}
	}
}

func TestHuffmanEmptyBlock(t *testing.T) {
	table, err := NewHuffmanTable([]byte{})

	if err != nil {
		t.Fatalf("Table build failed: %v", err)
	}

	payload, bitLen, err := table.Encode([]byte{})

	if err != nil || bitLen != 0 || len(payload) != 0 {
		t.Fatalf("Empty block must encode to an empty payload, got %d bytes, %d bits, %v", len(payload), bitLen, err)
	}

	res, err := table.Decode(payload, 0)

	if err != nil || len(res) != 0 {
		t.Fatalf("Empty payload must decode to an empty block, got %d bytes, %v", len(res), err)
	}
}

func TestHuffmanSingleSymbol(t *testing.T) {
	block := bytes.Repeat([]byte{'a'}, 17)
	table, err := NewHuffmanTable(block)

	if err != nil {
		t.Fatalf("Table build failed: %v", err)
	}

	if table.sizes['a'] != 1 {
		t.Fatalf("Single symbol must get code length 1, got %d", table.sizes['a'])
	}

	payload, bitLen, err := table.Encode(block)

	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if bitLen != 17 {
		t.Fatalf("Expected 17 bits, got %d", bitLen)
	}

	res, err := table.Decode(payload, bitLen)

	if err != nil || !bytes.Equal(res, block) {
		t.Fatalf("Single symbol round trip failed: %v", err)
	}
}

func TestHuffmanMissingCode(t *testing.T) {
	table, err := NewHuffmanTable([]byte("aaabbb"))

	if err != nil {
		t.Fatalf("Table build failed: %v", err)
	}

	_, _, err = table.Encode([]byte("abc"))

	if err == nil {
		t.Fatalf("Expected an error for a symbol absent from the table")
	}

	ce, ok := err.(*runepress.CodecError)

	if !ok || ce.ErrorCode() != runepress.ERR_MISSING_CODE {
		t.Fatalf("Expected ERR_MISSING_CODE, got %v", err)
	}
}

func TestHuffmanTruncatedPayload(t *testing.T) {
	block := []byte("abracadabra abracadabra")
	table, err := NewHuffmanTable(block)

	if err != nil {
		t.Fatalf("Table build failed: %v", err)
	}

	payload, bitLen, err := table.Encode(block)

	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Declared bit length larger than the remaining payload
	if _, err = table.Decode(payload[0:len(payload)-1], bitLen); err == nil {
		t.Fatalf("Expected an error for a truncated payload")
	}
}
