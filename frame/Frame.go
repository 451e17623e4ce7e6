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

// Package frame serializes the encode side bundle (dictionary, Huffman code
// lengths, payload bit length and payload) into one self describing binary
// blob and parses it back. All multi byte integers are big endian. The blob
// is deflated as a whole and wrapped with a 4 byte length header, forming
// the outer frame the obfuscation and packing stages operate on.
package frame

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/klauspost/compress/flate"
	runepress "github.com/runepress/runepress-go"
	"github.com/runepress/runepress-go/transform"
)

// Frame is the encode side bundle. It is built fresh for every encode call
// and parsed fresh for every decode call, never persisted.
type Frame struct {
	Dictionary  []string
	HuffSymbols []byte
	HuffSizes   []byte
	BitLen      uint32
	Payload     []byte
}

// Marshal serializes the frame:
// [dictCount:u16][(len:u16, utf8 bytes)*][huffCount:u16][(symbol:u8, length:u8)*][dataBitLen:u32][payload]
func (this *Frame) Marshal() ([]byte, error) {
	if len(this.Dictionary) > transform.MAX_DICT_ENTRIES || len(this.HuffSymbols) > 256 {
		return nil, runepress.NewCodecError("Frame codec: section too large", runepress.ERR_INVALID_PARAM)
	}

	if len(this.HuffSymbols) != len(this.HuffSizes) {
		return nil, runepress.NewCodecError("Frame codec: mismatched Huffman sections", runepress.ERR_INVALID_PARAM)
	}

	var buf bytes.Buffer
	var b2 [2]byte
	var b4 [4]byte
	binary.BigEndian.PutUint16(b2[:], uint16(len(this.Dictionary)))
	buf.Write(b2[:])

	for _, entry := range this.Dictionary {
		if len(entry) > 0xFFFF {
			return nil, runepress.NewCodecError("Frame codec: dictionary entry too large", runepress.ERR_INVALID_PARAM)
		}

		binary.BigEndian.PutUint16(b2[:], uint16(len(entry)))
		buf.Write(b2[:])
		buf.WriteString(entry)
	}

	binary.BigEndian.PutUint16(b2[:], uint16(len(this.HuffSymbols)))
	buf.Write(b2[:])

	for i := range this.HuffSymbols {
		buf.WriteByte(this.HuffSymbols[i])
		buf.WriteByte(this.HuffSizes[i])
	}

	binary.BigEndian.PutUint32(b4[:], this.BitLen)
	buf.Write(b4[:])
	buf.Write(this.Payload)
	return buf.Bytes(), nil
}

// Unmarshal parses a serialized frame, validating every declared length
// against the remaining buffer.
func Unmarshal(data []byte) (*Frame, error) {
	this := &Frame{}
	pos := 0

	dictCount, err := readUint16(data, &pos)

	if err != nil {
		return nil, err
	}

	if int(dictCount) > transform.MAX_DICT_ENTRIES {
		return nil, runepress.NewCodecError("Frame codec: too many dictionary entries", runepress.ERR_INVALID_PARAM)
	}

	this.Dictionary = make([]string, dictCount)

	for i := 0; i < int(dictCount); i++ {
		length, err := readUint16(data, &pos)

		if err != nil {
			return nil, err
		}

		if pos+int(length) > len(data) {
			return nil, errTruncated()
		}

		this.Dictionary[i] = string(data[pos : pos+int(length)])
		pos += int(length)
	}

	huffCount, err := readUint16(data, &pos)

	if err != nil {
		return nil, err
	}

	if huffCount > 256 {
		return nil, runepress.NewCodecError("Frame codec: too many Huffman entries", runepress.ERR_INVALID_PARAM)
	}

	this.HuffSymbols = make([]byte, huffCount)
	this.HuffSizes = make([]byte, huffCount)

	for i := 0; i < int(huffCount); i++ {
		if pos+2 > len(data) {
			return nil, errTruncated()
		}

		this.HuffSymbols[i] = data[pos]
		this.HuffSizes[i] = data[pos+1]
		pos += 2
	}

	if pos+4 > len(data) {
		return nil, errTruncated()
	}

	this.BitLen = binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	this.Payload = data[pos:]

	if uint64(this.BitLen) > uint64(len(this.Payload))*8 {
		return nil, errTruncated()
	}

	return this, nil
}

// Seal deflates the blob and prepends the 4 byte big endian length of the
// compressed result, forming the outer frame.
func Seal(blob []byte) ([]byte, error) {
	compressed, err := Deflate(blob)

	if err != nil {
		return nil, err
	}

	if uint64(len(compressed)) > math.MaxUint32 {
		return nil, runepress.NewCodecError("Frame codec: compressed blob too large", runepress.ERR_INVALID_PARAM)
	}

	res := make([]byte, 4+len(compressed))
	binary.BigEndian.PutUint32(res[0:4], uint32(len(compressed)))
	copy(res[4:], compressed)
	return res, nil
}

// Open validates the 4 byte length header against the buffer then inflates
// the compressed blob. Trailing bytes beyond the declared length are
// ignored: the bit packer may add up to one padded symbol.
func Open(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errTruncated()
	}

	length := binary.BigEndian.Uint32(data[0:4])

	if uint64(len(data)-4) < uint64(length) {
		return nil, errTruncated()
	}

	return Inflate(data[4 : 4+length])
}

// Deflate compresses the data with the general purpose DEFLATE compressor
func Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)

	if err != nil {
		return nil, runepress.NewCodecError(err.Error(), runepress.ERR_PROCESS)
	}

	if _, err := zw.Write(data); err != nil {
		return nil, runepress.NewCodecError(err.Error(), runepress.ERR_PROCESS)
	}

	if err := zw.Close(); err != nil {
		return nil, runepress.NewCodecError(err.Error(), runepress.ERR_PROCESS)
	}

	return buf.Bytes(), nil
}

// Inflate decompresses a deflated blob
func Inflate(data []byte) ([]byte, error) {
	zr := flate.NewReader(bytes.NewReader(data))
	res, err := io.ReadAll(zr)

	if err != nil {
		return nil, runepress.NewCodecError("Frame codec: corrupt compressed blob", runepress.ERR_PROCESS)
	}

	if err := zr.Close(); err != nil {
		return nil, runepress.NewCodecError(err.Error(), runepress.ERR_PROCESS)
	}

	return res, nil
}

func readUint16(data []byte, pos *int) (uint16, error) {
	if *pos+2 > len(data) {
		return 0, errTruncated()
	}

	res := binary.BigEndian.Uint16(data[*pos : *pos+2])
	*pos += 2
	return res, nil
}

func errTruncated() error {
	return runepress.NewCodecError("Frame codec: truncated stream", runepress.ERR_TRUNCATED_STREAM)
}
