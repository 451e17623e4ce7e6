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

// Package runepress defines the top level constants and types used by the
// runepress reversible text compaction codec.
//
// The implementations are available in sub-folders like alphabet, transform,
// entropy, frame or bitpack. In particular, the codec package contains the
// Encode and Decode pipeline entry points used to shorten text and restore it.
package runepress

import (
	"fmt"
)

// Version of the library
const Version = "1.0"

const (
	ERR_MISSING_PARAM      = 1
	ERR_INVALID_PARAM      = 2
	ERR_TRUNCATED_STREAM   = 3
	ERR_INVALID_INDEX      = 4
	ERR_INVALID_SYMBOL     = 5
	ERR_MISSING_CODE       = 6
	ERR_ALPHABET_TOO_SMALL = 7
	ERR_INVALID_CODE_LEN   = 8
	ERR_CREATE_CODEC       = 9
	ERR_OPEN_FILE          = 10
	ERR_READ_FILE          = 11
	ERR_WRITE_FILE         = 12
	ERR_PROCESS            = 13
	ERR_UNKNOWN            = 127
)

// CodecError an extended error containing a message and a code value
type CodecError struct {
	msg  string
	code int
}

// NewCodecError creates a new CodecError instance
func NewCodecError(msg string, code int) *CodecError {
	return &CodecError{msg: msg, code: code}
}

// Error returns the underlying error
func (this CodecError) Error() string {
	return fmt.Sprintf("%v (code %v)", this.msg, this.code)
}

// Message returns the message string associated with the error
func (this CodecError) Message() string {
	return this.msg
}

// ErrorCode returns the code value associated with the error
func (this CodecError) ErrorCode() int {
	return this.code
}

// Listener is a callback invoked with pipeline events during encoding
// or decoding
type Listener interface {
	ProcessEvent(evt *Event)
}
