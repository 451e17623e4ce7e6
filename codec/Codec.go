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

// Package codec sequences the pipeline stages into Encode and Decode.
//
// Encoding flows strictly downstream: text -> tokens -> Huffman bits ->
// frame -> deflate -> XOR -> packed symbols. Decoding runs every stage in
// exact reverse with the same key. Each call owns its buffers; the only
// shared state is the cached base alphabet.
package codec

import (
	"time"

	runepress "github.com/runepress/runepress-go"
	"github.com/runepress/runepress-go/alphabet"
	"github.com/runepress/runepress-go/bitpack"
	"github.com/runepress/runepress-go/entropy"
	"github.com/runepress/runepress-go/frame"
	"github.com/runepress/runepress-go/transform"
)

const (
	// TYPE_DYNAMIC mines a dictionary from the input text and entropy
	// codes the token stream. The dictionary travels inside the frame.
	TYPE_DYNAMIC = 0
	// TYPE_FIXED uses the static dictionary on both sides and frames the
	// deflated token stream directly, with no Huffman stage.
	TYPE_FIXED = 1
)

// Codec turns text into a shorter string over the keyed alphabet and back
type Codec struct {
	codecType int
	listeners []runepress.Listener
}

// New creates a Codec of the given type
func New(codecType int) (*Codec, error) {
	if codecType != TYPE_DYNAMIC && codecType != TYPE_FIXED {
		return nil, runepress.NewCodecError("Codec: invalid codec type", runepress.ERR_CREATE_CODEC)
	}

	return &Codec{codecType: codecType, listeners: make([]runepress.Listener, 0)}, nil
}

// AddListener adds an event listener to this codec.
// Returns true if the listener has been added.
func (this *Codec) AddListener(l runepress.Listener) bool {
	if l == nil {
		return false
	}

	this.listeners = append(this.listeners, l)
	return true
}

// RemoveListener removes an event listener from this codec.
// Returns true if the listener has been removed.
func (this *Codec) RemoveListener(l runepress.Listener) bool {
	for i, ls := range this.listeners {
		if ls == l {
			this.listeners = append(this.listeners[0:i], this.listeners[i+1:]...)
			return true
		}
	}

	return false
}

func (this *Codec) notify(evtType int, size int64) {
	if len(this.listeners) == 0 {
		return
	}

	evt := runepress.NewEvent(evtType, size, time.Now())

	for _, l := range this.listeners {
		l.ProcessEvent(evt)
	}
}

// Encode compacts the text into a string drawn from the keyed alphabet.
// An empty text maps to an empty output whatever the key.
func (this *Codec) Encode(text string, key string) (string, error) {
	if len(text) == 0 {
		return "", nil
	}

	this.notify(runepress.EVT_ENCODING_START, int64(len(text)))
	var dict []string

	if this.codecType == TYPE_DYNAMIC {
		dict = transform.BuildDictionary(text)
	} else {
		dict = transform.StaticDictionary()
	}

	this.notify(runepress.EVT_BEFORE_TRANSFORM, int64(len(text)))
	tokens, err := transform.Tokenize(text, dict)

	if err != nil {
		return "", err
	}

	this.notify(runepress.EVT_AFTER_TRANSFORM, int64(len(tokens)))
	var blob []byte

	if this.codecType == TYPE_DYNAMIC {
		this.notify(runepress.EVT_BEFORE_ENTROPY, int64(len(tokens)))
		table, err := entropy.NewHuffmanTable(tokens)

		if err != nil {
			return "", err
		}

		payload, bitLen, err := table.Encode(tokens)

		if err != nil {
			return "", err
		}

		this.notify(runepress.EVT_AFTER_ENTROPY, int64(len(payload)))
		symbols, sizes := table.Sizes()
		f := frame.Frame{
			Dictionary:  dict,
			HuffSymbols: symbols,
			HuffSizes:   sizes,
			BitLen:      bitLen,
			Payload:     payload,
		}

		if blob, err = f.Marshal(); err != nil {
			return "", err
		}
	} else {
		blob = tokens
	}

	outer, err := frame.Seal(blob)

	if err != nil {
		return "", err
	}

	applyKeyStream(outer, key)
	this.notify(runepress.EVT_BEFORE_PACK, int64(len(outer)))
	res, err := bitpack.Pack(outer, alphabet.Keyed(key))

	if err != nil {
		return "", err
	}

	this.notify(runepress.EVT_AFTER_PACK, int64(len(res)))
	this.notify(runepress.EVT_ENCODING_END, int64(len(res)))
	return res, nil
}

// Decode restores the original text from an encoded string. The key must be
// the one used to encode; with a different key the unpacking stage almost
// always rejects the input.
func (this *Codec) Decode(text string, key string) (string, error) {
	if len(text) == 0 {
		return "", nil
	}

	this.notify(runepress.EVT_DECODING_START, int64(len(text)))
	this.notify(runepress.EVT_BEFORE_PACK, int64(len(text)))
	data, err := bitpack.Unpack(text, alphabet.Keyed(key))

	if err != nil {
		return "", err
	}

	this.notify(runepress.EVT_AFTER_PACK, int64(len(data)))
	applyKeyStream(data, key)
	blob, err := frame.Open(data)

	if err != nil {
		return "", err
	}

	var tokens []byte
	var dict []string

	if this.codecType == TYPE_DYNAMIC {
		f, err := frame.Unmarshal(blob)

		if err != nil {
			return "", err
		}

		this.notify(runepress.EVT_BEFORE_ENTROPY, int64(len(f.Payload)))
		table, err := entropy.NewHuffmanTableFromSizes(f.HuffSymbols, f.HuffSizes)

		if err != nil {
			return "", err
		}

		if tokens, err = table.Decode(f.Payload, f.BitLen); err != nil {
			return "", err
		}

		this.notify(runepress.EVT_AFTER_ENTROPY, int64(len(tokens)))
		dict = f.Dictionary
	} else {
		tokens = blob
		dict = transform.StaticDictionary()
	}

	this.notify(runepress.EVT_BEFORE_TRANSFORM, int64(len(tokens)))
	res, err := transform.Detokenize(tokens, dict)

	if err != nil {
		return "", err
	}

	this.notify(runepress.EVT_AFTER_TRANSFORM, int64(len(res)))
	this.notify(runepress.EVT_DECODING_END, int64(len(res)))
	return res, nil
}

// applyKeyStream obfuscates the buffer in place by XORing it with the
// repeating key bytes. An empty key is the identity. This is obfuscation,
// not encryption.
func applyKeyStream(buf []byte, key string) {
	if len(key) == 0 {
		return
	}

	kb := []byte(key)

	for i := range buf {
		buf[i] ^= kb[i%len(kb)]
	}
}

// Encode compacts the text with the dynamic dictionary codec
func Encode(text string, key string) (string, error) {
	c, err := New(TYPE_DYNAMIC)

	if err != nil {
		return "", err
	}

	return c.Encode(text, key)
}

// Decode restores text encoded by Encode
func Decode(text string, key string) (string, error) {
	c, err := New(TYPE_DYNAMIC)

	if err != nil {
		return "", err
	}

	return c.Decode(text, key)
}
