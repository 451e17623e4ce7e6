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

// Package alphabet provides the set of printable Unicode code points used
// as output symbols by the bit packer, with optional key derived rotation.
package alphabet

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"unicode"
)

const (
	// FIRST_CODE_POINT first candidate code point of the scan
	FIRST_CODE_POINT = 0x21
	// LAST_CODE_POINT scan ceiling. Fixed: it determines the base of the
	// numeral system used by the bit packer, hence the wire format.
	LAST_CODE_POINT = 0xFFFD

	_SURROGATE_FIRST = 0xD800
	_SURROGATE_LAST  = 0xDFFF
)

var (
	once sync.Once
	base []rune
)

// Runes returns the base alphabet: all safe printable code points in
// [FIRST_CODE_POINT, LAST_CODE_POINT] in ascending order. The scan runs once
// per process and the result is cached. The returned slice is shared and
// must not be modified by the caller.
func Runes() []rune {
	once.Do(build)
	return base
}

// Size returns the number of symbols in the base alphabet
func Size() int {
	return len(Runes())
}

func build() {
	res := make([]rune, 0, LAST_CODE_POINT-FIRST_CODE_POINT)

	for cp := rune(FIRST_CODE_POINT); cp <= LAST_CODE_POINT; cp++ {
		if cp == _SURROGATE_FIRST {
			cp = _SURROGATE_LAST
			continue
		}

		if isSafe(cp) {
			res = append(res, cp)
		}
	}

	base = res
}

// isSafe rejects whitespace, control and format characters and combining
// (nonspacing or enclosing) marks.
func isSafe(cp rune) bool {
	if unicode.IsSpace(cp) || unicode.IsControl(cp) {
		return false
	}

	if unicode.Is(unicode.Cf, cp) || unicode.Is(unicode.Mn, cp) || unicode.Is(unicode.Me, cp) {
		return false
	}

	return true
}

// Keyed returns the alphabet to use for the given key. An empty key yields
// the base alphabet. Otherwise the base alphabet is rotated by an offset
// derived from the first four bytes of the SHA-256 digest of the key. The
// rotation preserves the symbol set and their cyclic order, only the
// starting point changes. The result is a pure function of the key.
func Keyed(key string) []rune {
	res := Runes()

	if len(key) == 0 {
		return res
	}

	sum := sha256.Sum256([]byte(key))
	offset := int(binary.BigEndian.Uint32(sum[0:4]) % uint32(len(res)))
	rot := make([]rune, len(res))
	n := copy(rot, res[offset:])
	copy(rot[n:], res[:offset])
	return rot
}
