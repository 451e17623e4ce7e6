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
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStaticDictionaryShape(t *testing.T) {
	dict := StaticDictionary()

	if len(dict) == 0 || len(dict) > MAX_DICT_ENTRIES {
		t.Fatalf("Static dictionary has %d entries", len(dict))
	}

	seen := make(map[string]bool)
	prevLen := 1 << 20

	for _, s := range dict {
		if seen[s] {
			t.Fatalf("Duplicate static entry %q", s)
		}

		seen[s] = true
		l := utf8.RuneCountInString(s)

		if l > prevLen {
			t.Fatalf("Static dictionary not sorted longest first at %q", s)
		}

		prevLen = l
	}
}

func TestBuildDictionarySize(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 500)
	dict := BuildDictionary(text)

	if len(dict) > MAX_DICT_ENTRIES {
		t.Fatalf("Dictionary has %d entries, limit is %d", len(dict), MAX_DICT_ENTRIES)
	}

	seen := make(map[string]bool)

	for _, s := range dict {
		if seen[s] {
			t.Fatalf("Duplicate dictionary entry %q", s)
		}

		seen[s] = true
	}
}

func TestBuildDictionaryFindsRepeats(t *testing.T) {
	text := strings.Repeat("the quick brown fox", 3000)
	dict := BuildDictionary(text)
	found := false

	for _, s := range dict {
		if utf8.RuneCountInString(s) >= _DICT_MIN_MATCH && strings.Contains(text, s) && strings.Count(text, s) >= _DICT_MIN_OCCURRENCE {
			found = true
			break
		}
	}

	if !found {
		t.Fatalf("No repeated fragment mined from a highly repetitive text")
	}
}

func TestBuildDictionaryDeterministic(t *testing.T) {
	text := strings.Repeat("some repeated content with patterns, some repeated content. ", 200)
	a := BuildDictionary(text)
	b := BuildDictionary(text)

	if len(a) != len(b) {
		t.Fatalf("Dictionary sizes differ: %d != %d", len(a), len(b))
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Dictionaries differ at index %d: %q != %q", i, a[i], b[i])
		}
	}
}

func TestBuildDictionaryNoRepeats(t *testing.T) {
	// Nothing worth mining: the dictionary falls back to the static entries
	dict := BuildDictionary("abcdefghij")

	if len(dict) != len(StaticDictionary()) {
		t.Fatalf("Expected only static entries, got %d", len(dict))
	}
}
