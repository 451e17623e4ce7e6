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

package transform

import (
	"bytes"
	"strings"
	"unicode/utf8"

	runepress "github.com/runepress/runepress-go"
)

// ESCAPE marks the start of a 2 byte dictionary token (ESCAPE, index).
// A valid UTF-8 byte never equals 0xFF, so literal bytes cannot alias it.
const ESCAPE = byte(0xFF)

// Tokenize rewrites the text into a byte stream where dictionary matches
// become 2 byte tokens and every other code point passes through as its
// UTF-8 bytes. Matching is greedy, leftmost first and first match by index
// order, not longest match: the dictionary ordering is part of the encoding
// contract and must be identical on decode.
func Tokenize(text string, dict []string) ([]byte, error) {
	if len(dict) > MAX_DICT_ENTRIES {
		return nil, runepress.NewCodecError("Tokenizer: too many dictionary entries", runepress.ERR_INVALID_PARAM)
	}

	dst := make([]byte, 0, len(text))

	for i := 0; i < len(text); {
		rem := text[i:]
		matched := false

		for idx := range dict {
			if strings.HasPrefix(rem, dict[idx]) {
				dst = append(dst, ESCAPE, byte(idx))
				i += len(dict[idx])
				matched = true
				break
			}
		}

		if matched {
			continue
		}

		// Advance by one code point, not one byte, to stay safe with
		// multi byte sequences.
		_, size := utf8.DecodeRuneInString(rem)
		dst = append(dst, rem[0:size]...)
		i += size
	}

	return dst, nil
}

// Detokenize expands the token stream back into text using the same
// dictionary in the same order.
func Detokenize(src []byte, dict []string) (string, error) {
	var sb bytes.Buffer
	sb.Grow(len(src))

	for i := 0; i < len(src); i++ {
		cur := src[i]

		if cur != ESCAPE {
			sb.WriteByte(cur)
			continue
		}

		if i+1 >= len(src) {
			return "", runepress.NewCodecError("Tokenizer: escape byte at end of stream", runepress.ERR_TRUNCATED_STREAM)
		}

		i++
		idx := int(src[i])

		if idx >= len(dict) {
			return "", runepress.NewCodecError("Tokenizer: dictionary index out of range", runepress.ERR_INVALID_INDEX)
		}

		sb.WriteString(dict[idx])
	}

	return sb.String(), nil
}
