// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"encoding"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-jsondata/jsondata/jsontext"
)

// ScannerReader is implemented by types that bind themselves directly from
// a token scanner. The implementation must consume the entire element at
// the scanner position, including its terminator.
type ScannerReader interface {
	ReadJSON(*jsontext.Scanner) error
}

// ChunkSink is the interface consumed from a segmented or otherwise
// incrementally built string target: a streamed string or number value is
// delivered to it chunk by chunk without ever being materialized whole.
type ChunkSink interface {
	AppendChunk([]byte)
	Len() int
}

// addressableValue is a reflect.Value that is guaranteed to be addressable
// such that calling the Addr and Set methods do not panic.
//
// There is no compile magic that enforces this property,
// but rather the need to construct this type makes it easier to examine each
// construction site to ensure that this property is upheld.
type addressableValue struct{ reflect.Value }

// newAddressableValue constructs a new addressable value of type t.
func newAddressableValue(t reflect.Type) addressableValue {
	return addressableValue{reflect.New(t).Elem()}
}

// All binding behavior is implemented using this signature. A reader binds
// the element at the scanner position into va and always leaves the
// scanner on the token following the element.
type readerFunc = func(s *jsontext.Scanner, va addressableValue) error

type typeReader struct {
	read readerFunc
}

var readerCache sync.Map // map[reflect.Type]*typeReader

// lookupReader returns the reader bound to t, synthesizing one on first
// request. Before synthesis begins, a deferred placeholder is stored so
// that mutually-referential record types resolve to it and terminate;
// the placeholder forwards to the real reader and caches it on first use.
func lookupReader(t reflect.Type) *typeReader {
	if v, ok := readerCache.Load(t); ok {
		return v.(*typeReader)
	}
	fwd := new(typeReader)
	var resolved atomic.Pointer[typeReader]
	fwd.read = func(s *jsontext.Scanner, va addressableValue) error {
		r := resolved.Load()
		if r == nil {
			if v, ok := readerCache.Load(t); ok {
				if tr := v.(*typeReader); tr != fwd {
					resolved.Store(tr)
					r = tr
				}
			}
			if r == nil {
				// Synthesis has not completed; behave as the null reader.
				return readSkip(s, va)
			}
		}
		return r.read(s, va)
	}
	if v, loaded := readerCache.LoadOrStore(t, fwd); loaded {
		return v.(*typeReader)
	}
	r := makeDefaultReader(t)
	readerCache.Store(t, r)
	return r
}

var (
	anyType             = reflect.TypeOf((*any)(nil)).Elem()
	valueType           = reflect.TypeOf((*Value)(nil)).Elem()
	timeType            = reflect.TypeOf((*time.Time)(nil)).Elem()
	durationType        = reflect.TypeOf((*time.Duration)(nil)).Elem()
	uuidType            = reflect.TypeOf((*uuid.UUID)(nil)).Elem()
	decimalType         = reflect.TypeOf((*decimal.Decimal)(nil)).Elem()
	scannerReaderType   = reflect.TypeOf((*ScannerReader)(nil)).Elem()
	chunkSinkType       = reflect.TypeOf((*ChunkSink)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// makeDefaultReader synthesizes the reader for t. The strategies are tried
// in a fixed order; the first that applies wins, and a type no strategy
// can serve gets the null reader, which skips the element and yields the
// zero value.
func makeDefaultReader(t reflect.Type) *typeReader {
	// Pre-built table of types with dedicated readers.
	switch t {
	case valueType:
		return makeValueReader(t)
	case timeType:
		return makeTextReader(t)
	case durationType:
		return makeDurationReader(t)
	case uuidType:
		return makeTextReader(t)
	case decimalType:
		return makeDecimalReader(t)
	}
	switch t.Kind() {
	case reflect.Bool:
		return makeBoolReader(t)
	case reflect.String:
		return makeStringReader(t)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return makeIntReader(t)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return makeUintReader(t)
	case reflect.Float32, reflect.Float64:
		return makeFloatReader(t)
	case reflect.Pointer:
		return makePtrReader(t)
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return makeAnyReader(t)
		}
		return makeNullReader(t)
	}
	if r := makeOverrideReader(t); r != nil {
		return r
	}
	if r := makeChunkSinkReader(t); r != nil {
		return r
	}
	switch t.Kind() {
	case reflect.Map:
		return makeMapReader(t)
	case reflect.Slice:
		return makeSliceReader(t)
	case reflect.Array:
		return makeArrayReader(t)
	}
	if r := makeBuilderReader(t); r != nil {
		return r
	}
	if r := makeAddReader(t); r != nil {
		return r
	}
	if t.Kind() == reflect.Struct {
		if r := makeStructReader(t); r != nil {
			return r
		}
	}
	if r := makeTextReader(t); r != nil {
		return r
	}
	return makeNullReader(t)
}

// readSkip is the null reader behavior: zero the target and skip past the
// element at the scanner position.
func readSkip(s *jsontext.Scanner, va addressableValue) error {
	va.Set(reflect.Zero(va.Type()))
	s.SkipElement()
	return nil
}

func makeNullReader(t reflect.Type) *typeReader {
	return &typeReader{read: readSkip}
}

// makeOverrideReader binds types that implement ScannerReader themselves.
func makeOverrideReader(t reflect.Type) *typeReader {
	if !reflect.PointerTo(t).Implements(scannerReaderType) {
		return nil
	}
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		return va.Addr().Interface().(ScannerReader).ReadJSON(s)
	}}
}

// makeChunkSinkReader streams a string or number value into a target that
// accepts appended spans, chunk by chunk.
func makeChunkSinkReader(t reflect.Type) *typeReader {
	if !reflect.PointerTo(t).Implements(chunkSinkType) {
		return nil
	}
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.String, jsontext.Number:
			sink := va.Addr().Interface().(ChunkSink)
			for s.NextTokenChunk() {
				sink.AppendChunk(s.ValueChunk())
			}
			s.NextToken()
			return nil
		default:
			return readSkip(s, va)
		}
	}}
}

// makeTextReader binds types that parse themselves from text. A string
// value supplies its decoded contents, a number its lexical text; a parse
// failure leaves the zero value.
func makeTextReader(t reflect.Type) *typeReader {
	if !reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return nil
	}
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.String, jsontext.Number:
			text := s.ReadValue()
			if err := va.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
				va.Set(reflect.Zero(va.Type()))
			}
			return nil
		default:
			return readSkip(s, va)
		}
	}}
}

// makeBuilderReader binds immutable collection types that expose a
// ToBuilder method whose result has an Add method and a finalize method
// returning the collection type.
func makeBuilderReader(t reflect.Type) *typeReader {
	toBuilder, ok := t.MethodByName("ToBuilder")
	if !ok || toBuilder.Type.NumIn() != 1 || toBuilder.Type.NumOut() != 1 {
		return nil
	}
	builderType := toBuilder.Type.Out(0)
	add, ok := builderType.MethodByName("Add")
	if !ok {
		return nil
	}
	var finalize *reflect.Method
	for i := 0; i < builderType.NumMethod(); i++ {
		m := builderType.Method(i)
		if m.Name != "Add" && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 && m.Type.Out(0) == t {
			finalize = &m
			break
		}
	}
	if finalize == nil {
		return nil
	}
	switch add.Type.NumIn() - 1 {
	case 1:
		elemReader := lookupReader(add.Type.In(1))
		elemType := add.Type.In(1)
		return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
			if s.Kind() != jsontext.ListStart {
				return readSkip(s, va)
			}
			builder := va.Method(toBuilder.Index).Call(nil)[0]
			if err := eachListElement(s, elemType, elemReader, func(ev addressableValue) {
				builder.Method(add.Index).Call([]reflect.Value{ev.Value})
			}); err != nil {
				return err
			}
			va.Set(builder.Method(finalize.Index).Call(nil)[0])
			return nil
		}}
	case 2:
		keyType, valType := add.Type.In(1), add.Type.In(2)
		keyReader, valReader := lookupReader(keyType), lookupReader(valType)
		return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
			if s.Kind() != jsontext.ObjectStart {
				return readSkip(s, va)
			}
			builder := va.Method(toBuilder.Index).Call(nil)[0]
			if err := eachObjectMember(s, keyType, valType, keyReader, valReader, func(kv, vv addressableValue) {
				builder.Method(add.Index).Call([]reflect.Value{kv.Value, vv.Value})
			}); err != nil {
				return err
			}
			va.Set(builder.Method(finalize.Index).Call(nil)[0])
			return nil
		}}
	}
	return nil
}

// makeAddReader binds collection types with a default-constructible value
// and an Add method: Add(E) reads a list, Add(K, V) reads an object.
// Add must return nothing, which keeps arithmetic methods such as
// time.Time.Add from being mistaken for collection insertion.
func makeAddReader(t reflect.Type) *typeReader {
	add, ok := reflect.PointerTo(t).MethodByName("Add")
	if !ok || add.Type.NumOut() != 0 {
		return nil
	}
	switch add.Type.NumIn() - 1 {
	case 1:
		elemType := add.Type.In(1)
		elemReader := lookupReader(elemType)
		return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
			if s.Kind() != jsontext.ListStart {
				return readSkip(s, va)
			}
			va.Set(reflect.Zero(va.Type()))
			addFn := va.Addr().Method(add.Index)
			return eachListElement(s, elemType, elemReader, func(ev addressableValue) {
				addFn.Call([]reflect.Value{ev.Value})
			})
		}}
	case 2:
		keyType, valType := add.Type.In(1), add.Type.In(2)
		keyReader, valReader := lookupReader(keyType), lookupReader(valType)
		return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
			if s.Kind() != jsontext.ObjectStart {
				return readSkip(s, va)
			}
			va.Set(reflect.Zero(va.Type()))
			addFn := va.Addr().Method(add.Index)
			return eachObjectMember(s, keyType, valType, keyReader, valReader, func(kv, vv addressableValue) {
				addFn.Call([]reflect.Value{kv.Value, vv.Value})
			})
		}}
	}
	return nil
}

// eachListElement consumes the list at the scanner position, reading each
// element with elemReader and handing it to fn. The opening token must
// already be ListStart; the closing token is consumed before returning.
// Redundant commas between elements are skipped, and a missing comma does
// not abort.
func eachListElement(s *jsontext.Scanner, elemType reflect.Type, elemReader *typeReader, fn func(addressableValue)) error {
	s.NextToken()
	ev := newAddressableValue(elemType)
	for {
		for s.Kind() == jsontext.Comma {
			s.NextToken()
		}
		if s.Kind() == jsontext.ListEnd {
			s.NextToken()
			return nil
		}
		if s.Kind() == jsontext.None {
			return s.Err()
		}
		ev.Set(reflect.Zero(elemType))
		if err := elemReader.read(s, ev); err != nil {
			return err
		}
		fn(ev)
	}
}

// eachObjectMember consumes the object at the scanner position, reading
// each member name with keyReader and each value with valReader. The
// opening token must already be ObjectStart; the closing token is consumed
// before returning.
func eachObjectMember(s *jsontext.Scanner, keyType, valType reflect.Type, keyReader, valReader *typeReader, fn func(k, v addressableValue)) error {
	s.NextToken()
	kv := newAddressableValue(keyType)
	vv := newAddressableValue(valType)
	for {
		for s.Kind() == jsontext.Comma {
			s.NextToken()
		}
		if s.Kind() == jsontext.ObjectEnd {
			s.NextToken()
			return nil
		}
		if s.Kind() == jsontext.None {
			return s.Err()
		}
		if s.Kind() != jsontext.String {
			s.SkipElement()
			continue
		}
		kv.Set(reflect.Zero(keyType))
		if err := keyReader.read(s, kv); err != nil {
			return err
		}
		if s.Kind() == jsontext.Colon {
			s.NextToken()
		}
		vv.Set(reflect.Zero(valType))
		if err := valReader.read(s, vv); err != nil {
			return err
		}
		fn(kv, vv)
	}
}
