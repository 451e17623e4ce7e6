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

// Package transform provides the dictionary substitution layer of the
// pipeline: substring mining, the static fallback dictionary and the
// tokenizer that rewrites text into escape coded bytes.
package transform

import (
	"sort"
	"unicode/utf8"
)

const (
	// MAX_DICT_ENTRIES maximum number of dictionary entries. Index values
	// occupy one byte and 0xFF is reserved for the escape marker, so only
	// indexes 0..253 are ever assigned.
	MAX_DICT_ENTRIES = 254

	_DICT_MIN_MATCH      = 4      // shortest mined substring (in code points)
	_DICT_MAX_MATCH      = 10     // longest mined substring (in code points)
	_DICT_MIN_OCCURRENCE = 2      // discard rarer substrings
	_DICT_SAMPLE_SIZE    = 200000 // mining sample, in code points
	_DICT_MAX_MINED      = 200    // mined entries kept before the static merge
)

// Default dictionary.
// Common English fragments, ordered by decreasing length at init time.
var _DICT_STATIC = []string{
	" the ", " of ", " and ", " to ", " in ", " that ", " is ", " for ",
	" with ", " was ", " his ", " not ", " this ", " have ", " from ",
	" which ", " but ", " are ", " her ", " they ", " you ", " had ",
	" all ", " would ", " there ", " their ", " will ", " when ", " who ",
	" been ", " one ", " were ", " him ", " she ", " has ", " more ",
	" about ", " its ", " into ", " than ", " them ", " can ", " only ",
	" other ", " time ", " some ", " could ", " these ", " two ", " may ",
	" then ", " do ", " first ", " any ", " my ", " now ", " such ",
	" like ", " our ", " over ", " man ", " me ", " even ", " most ",
	" made ", " after ", " also ", " did ", " many ", " before ", " must ",
	" through ", " years ", " where ", " much ", " your ", " way ",
	" well ", " down ", " should ", " because ", " each ", " just ",
	" those ", " people ", " how ", " too ", " little ", " state ",
	" good ", " very ", " make ", " world ", " still ", " own ", " see ",
	" men ", " work ", " long ", " here ", " get ", " both ", " between ",
	" life ", " being ", " under ", " never ", " day ", " same ",
	" another ", " know ", " while ", " last ", " might ", " us ",
	" great ", " old ", " year ", " off ", " come ", " since ",
	"http://", "https://", "www.", ".com", ".org", "</", "=\"", "><",
	"tion", "atio", "ing ", "ment", "ther", "ould", "ight", "hich",
	"the", "and", "ing", "ion", "ent", "her", "for", "tha", "nth",
	"int", "ere", "tio", "ter", "est", "ers", "ati", "hat", "ate",
	"all", "eth", "hes", "ver", "his", "oft", "ith", "fth", "sth",
	"oth", "res", "ont", "\r\n", ", ", ". ", "e ", " t", "th", "he",
	"s ", " a", "d ", "in", "t ", "er", "an", "on", "re", " s",
	"at", "en", "nd", "ti", "es", "or",
}

var staticDict = initStaticDict()

func initStaticDict() []string {
	res := make([]string, 0, len(_DICT_STATIC))
	seen := make(map[string]bool, len(_DICT_STATIC))

	for _, s := range _DICT_STATIC {
		if seen[s] {
			continue
		}

		seen[s] = true
		res = append(res, s)
	}

	// Longest fragments first. Stable: equal lengths keep the list order.
	sort.SliceStable(res, func(i, j int) bool {
		return utf8.RuneCountInString(res[i]) > utf8.RuneCountInString(res[j])
	})

	if len(res) > MAX_DICT_ENTRIES {
		res = res[0:MAX_DICT_ENTRIES]
	}

	return res
}

// StaticDictionary returns the fixed fallback dictionary, longest fragments
// first. It is the full dictionary of the fixed variant of the codec. The
// returned slice is shared and must not be modified by the caller.
func StaticDictionary() []string {
	return staticDict
}

type candidate struct {
	frag   string
	score  int
	length int
}

// BuildDictionary mines the input text for frequently repeated substrings
// and returns the substitution dictionary: the most cost effective mined
// fragments followed by the static fallback entries, at most
// MAX_DICT_ENTRIES in total. The same text always yields the same
// dictionary.
func BuildDictionary(text string) []string {
	sample := []rune(text)

	if len(sample) > _DICT_SAMPLE_SIZE {
		sample = sample[0:_DICT_SAMPLE_SIZE]
	}

	counts := make(map[string]int)

	for length := _DICT_MIN_MATCH; length <= _DICT_MAX_MATCH; length++ {
		for i := 0; i+length <= len(sample); i++ {
			counts[string(sample[i:i+length])]++
		}
	}

	candidates := make([]candidate, 0, 64)

	for frag, n := range counts {
		if n < _DICT_MIN_OCCURRENCE {
			continue
		}

		length := utf8.RuneCountInString(frag)

		// Each occurrence shrinks from length bytes to 3 and the entry
		// itself costs 2+length bytes of frame overhead.
		score := n*(length-3) - (2 + length)

		if score <= 0 {
			continue
		}

		candidates = append(candidates, candidate{frag: frag, score: score, length: length})
	}

	// Ties broken by length then fragment value to keep the result
	// reproducible across runs.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}

		if candidates[i].length != candidates[j].length {
			return candidates[i].length > candidates[j].length
		}

		return candidates[i].frag < candidates[j].frag
	})

	if len(candidates) > _DICT_MAX_MINED {
		candidates = candidates[0:_DICT_MAX_MINED]
	}

	dict := make([]string, 0, MAX_DICT_ENTRIES)
	seen := make(map[string]bool, MAX_DICT_ENTRIES)

	for _, c := range candidates {
		dict = append(dict, c.frag)
		seen[c.frag] = true
	}

	for _, s := range staticDict {
		if len(dict) >= MAX_DICT_ENTRIES {
			break
		}

		if seen[s] {
			continue
		}

		dict = append(dict, s)
	}

	return dict
}
