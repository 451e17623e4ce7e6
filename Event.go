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

package runepress

import (
	"fmt"
	"time"
)

const (
	EVT_ENCODING_START   = 0 // Encoding starts
	EVT_DECODING_START   = 1 // Decoding starts
	EVT_BEFORE_TRANSFORM = 2 // Tokenization/detokenization starts
	EVT_AFTER_TRANSFORM  = 3 // Tokenization/detokenization ends
	EVT_BEFORE_ENTROPY   = 4 // Entropy encoding/decoding starts
	EVT_AFTER_ENTROPY    = 5 // Entropy encoding/decoding ends
	EVT_BEFORE_PACK      = 6 // Bit packing/unpacking starts
	EVT_AFTER_PACK       = 7 // Bit packing/unpacking ends
	EVT_ENCODING_END     = 8 // Encoding ends
	EVT_DECODING_END     = 9 // Decoding ends
)

// Event a pipeline encoding/decoding event
type Event struct {
	eventType int
	size      int64
	eventTime time.Time
	msg       string
}

// NewEventFromString creates a new Event instance that wraps a message
func NewEventFromString(evtType int, msg string, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, size: 0, msg: msg, eventTime: evtTime}
}

// NewEvent creates a new Event instance with size info
func NewEvent(evtType int, size int64, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, size: size, eventTime: evtTime}
}

// Type returns the type info
func (this *Event) Type() int {
	return this.eventType
}

// Time returns the time info
func (this *Event) Time() time.Time {
	return this.eventTime
}

// Size returns the size info
func (this *Event) Size() int64 {
	return this.size
}

// String returns a string representation of this event.
// If the event wraps a message, the message is returned.
// Otherwise a string is built from the fields.
func (this *Event) String() string {
	if len(this.msg) > 0 {
		return this.msg
	}

	t := ""

	switch this.eventType {
	case EVT_ENCODING_START:
		t = "ENCODING_START"

	case EVT_DECODING_START:
		t = "DECODING_START"

	case EVT_BEFORE_TRANSFORM:
		t = "BEFORE_TRANSFORM"

	case EVT_AFTER_TRANSFORM:
		t = "AFTER_TRANSFORM"

	case EVT_BEFORE_ENTROPY:
		t = "BEFORE_ENTROPY"

	case EVT_AFTER_ENTROPY:
		t = "AFTER_ENTROPY"

	case EVT_BEFORE_PACK:
		t = "BEFORE_PACK"

	case EVT_AFTER_PACK:
		t = "AFTER_PACK"

	case EVT_ENCODING_END:
		t = "ENCODING_END"

	case EVT_DECODING_END:
		t = "DECODING_END"

	default:
		t = "UNKNOWN"
	}

	return fmt.Sprintf("{ \"type\": \"%s\", \"size\": %d, \"time\": %d }",
		t, this.size, this.eventTime.UnixNano()/1000000)
}
