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

// Transcode pulls the events of exactly one value from src
// and forwards each of them, in order, to dst.
//
// No intermediate tree is built: only the stack of open containers
// is tracked, to validate the event stream.
//
// Failures of src are returned as *SourceError, failures of dst as *SinkError.
// Output already written to dst is not rolled back.
func Transcode(src Deserializer, dst Serializer) error {
	var v validator
	v.reset()

	for !v.done() {
		event, err := src.Next()
		if err != nil {
			if err == io.EOF {
				err = NewFormatError(src.Position(), io.ErrUnexpectedEOF)
			}
			return &SourceError{Err: err}
		}

		err = v.accept(event)
		if err != nil {
			return err
		}

		err = Emit(dst, event)
		if err != nil {
			return &SinkError{Err: err}
		}
	}

	_, err := src.Next()
	if err != io.EOF {
		if err == nil {
			err = NewFormatError(src.Position(), ErrTrailingData)
		}
		return &SourceError{Err: err}
	}

	if flusher, ok := dst.(Flusher); ok {
		err = flusher.Flush()
		if err != nil {
			return &SinkError{Err: err}
		}
	}

	return nil
}

type frameKind uint8

const (
	frameRoot frameKind = iota
	frameSome
	frameSequence
	frameMapping
)

type expectation uint8

const (
	expectValue expectation = iota
	expectElement
	expectKey
	expectMappingValue
	expectNothing
)

func (e expectation) String() string {
	switch e {
	case expectValue:
		return "a value"
	case expectElement:
		return "SequenceElement or SequenceEnd"
	case expectKey:
		return "MappingKey or MappingEnd"
	case expectMappingValue:
		return "MappingValue"
	default:
		return "end of events"
	}
}

type frame struct {
	kind   frameKind
	expect expectation
	inKey  bool
}

// validator tracks the open containers of an event stream,
// and rejects events which break the nesting rules.
type validator struct {
	stack []frame
}

func (v *validator) reset() {
	v.stack = append(v.stack[:0], frame{
		kind:   frameRoot,
		expect: expectValue,
	})
}

func (v *validator) done() bool {
	return len(v.stack) == 1 &&
		v.stack[0].expect == expectNothing
}

func (v *validator) top() *frame {
	return &v.stack[len(v.stack)-1]
}

func (v *validator) accept(event Event) error {
	top := v.top()

	invalid := func() error {
		return &InvalidEventError{
			Event:    event,
			Expected: top.expect.String(),
		}
	}

	switch event.Kind {
	case KindSequenceElement:
		if top.expect != expectElement {
			return invalid()
		}
		top.expect = expectValue
		return nil

	case KindSequenceEnd:
		if top.kind != frameSequence || top.expect != expectElement {
			return invalid()
		}
		v.stack = v.stack[:len(v.stack)-1]
		v.completeValue()
		return nil

	case KindMappingKey:
		if top.expect != expectKey {
			return invalid()
		}
		top.expect = expectValue
		top.inKey = true
		return nil

	case KindMappingValue:
		if top.expect != expectMappingValue {
			return invalid()
		}
		top.expect = expectValue
		top.inKey = false
		return nil

	case KindMappingEnd:
		if top.kind != frameMapping || top.expect != expectKey {
			return invalid()
		}
		v.stack = v.stack[:len(v.stack)-1]
		v.completeValue()
		return nil
	}

	// All remaining events start a value

	if top.expect != expectValue {
		return invalid()
	}

	switch event.Kind {
	case KindSome:
		v.stack = append(v.stack, frame{
			kind:   frameSome,
			expect: expectValue,
		})

	case KindSequenceStart:
		v.stack = append(v.stack, frame{
			kind:   frameSequence,
			expect: expectElement,
		})

	case KindMappingStart:
		v.stack = append(v.stack, frame{
			kind:   frameMapping,
			expect: expectKey,
		})

	default:
		if !event.Kind.IsScalar() {
			return invalid()
		}
		v.completeValue()
	}

	return nil
}

// completeValue advances the innermost open frame past a finished value.
func (v *validator) completeValue() {
	for {
		top := v.top()
		switch top.kind {
		case frameRoot:
			top.expect = expectNothing
			return

		case frameSome:
			v.stack = v.stack[:len(v.stack)-1]
			continue

		case frameSequence:
			top.expect = expectElement
			return

		case frameMapping:
			if top.inKey {
				top.expect = expectMappingValue
			} else {
				top.expect = expectKey
			}
			return
		}
	}
}
