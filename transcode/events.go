/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package transcode

import (
	"io"
)

// EventRecorder is a Serializer which records all events it receives.
type EventRecorder struct {
	Events []Event
}

var _ Serializer = &EventRecorder{}

func (r *EventRecorder) record(e Event) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *EventRecorder) SerializeUnit() error { return r.record(Unit()) }

func (r *EventRecorder) SerializeBool(v bool) error { return r.record(Bool(v)) }

func (r *EventRecorder) SerializeInt(v int64, width Width) error { return r.record(Int(v, width)) }

func (r *EventRecorder) SerializeUint(v uint64, width Width) error { return r.record(Uint(v, width)) }

func (r *EventRecorder) SerializeFloat(v float64, width Width) error {
	return r.record(Float(v, width))
}

func (r *EventRecorder) SerializeString(v string) error { return r.record(String(v)) }

func (r *EventRecorder) SerializeBytes(v []byte) error { return r.record(Bytes(v)) }

func (r *EventRecorder) SerializeNone() error { return r.record(None()) }

func (r *EventRecorder) SerializeSome() error { return r.record(Some()) }

func (r *EventRecorder) StartSequence(length int) error { return r.record(SequenceStart(length)) }

func (r *EventRecorder) SequenceElement() error { return r.record(SequenceElement()) }

func (r *EventRecorder) EndSequence() error { return r.record(SequenceEnd()) }

func (r *EventRecorder) StartMapping(length int) error { return r.record(MappingStart(length)) }

func (r *EventRecorder) MappingKey() error { return r.record(MappingKey()) }

func (r *EventRecorder) MappingValue() error { return r.record(MappingValue()) }

func (r *EventRecorder) EndMapping() error { return r.record(MappingEnd()) }

// EventReader is a Deserializer which replays a fixed list of events.
type EventReader struct {
	events []Event
	next   int
}

var _ Deserializer = &EventReader{}

func NewEventReader(events ...Event) *EventReader {
	return &EventReader{events: events}
}

func (r *EventReader) Next() (Event, error) {
	if r.next >= len(r.events) {
		return Event{}, io.EOF
	}
	event := r.events[r.next]
	r.next++
	return event, nil
}

func (r *EventReader) Position() Position {
	return Position{
		Event: r.next,
		Tree:  true,
	}
}
