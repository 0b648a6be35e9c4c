// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-jsondata/jsondata/jsontext"
)

// The readers below are deliberately permissive: a value of the wrong
// shape is skipped and the target keeps its zero value, and a number or
// date that fails to parse yields the zero value rather than an error.
// Every reader leaves the scanner on the token following the element it
// consumed.

func makeBoolReader(t reflect.Type) *typeReader {
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.True:
			va.SetBool(true)
			s.NextToken()
		case jsontext.False:
			va.SetBool(false)
			s.NextToken()
		case jsontext.String:
			va.SetBool(strings.EqualFold(s.ReadValue(), "true"))
		default:
			return readSkip(s, va)
		}
		return nil
	}}
}

func makeStringReader(t reflect.Type) *typeReader {
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.String:
			va.SetString(s.ReadValue())
		case jsontext.Number, jsontext.True, jsontext.False:
			va.SetString(s.ReadText())
		default:
			return readSkip(s, va)
		}
		return nil
	}}
}

func makeIntReader(t reflect.Type) *typeReader {
	bits := t.Bits()
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.Number, jsontext.String:
			n, err := strconv.ParseInt(s.ReadValue(), 10, bits)
			if err != nil {
				n = 0 // ParseInt clamps on range errors; the contract is the zero value
			}
			va.SetInt(n)
		default:
			return readSkip(s, va)
		}
		return nil
	}}
}

func makeUintReader(t reflect.Type) *typeReader {
	bits := t.Bits()
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.Number, jsontext.String:
			n, err := strconv.ParseUint(s.ReadValue(), 10, bits)
			if err != nil {
				n = 0
			}
			va.SetUint(n)
		default:
			return readSkip(s, va)
		}
		return nil
	}}
}

func makeFloatReader(t reflect.Type) *typeReader {
	bits := t.Bits()
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.Number, jsontext.String:
			f, err := strconv.ParseFloat(s.ReadValue(), bits)
			if err != nil {
				f = 0
			}
			va.SetFloat(f)
		default:
			return readSkip(s, va)
		}
		return nil
	}}
}

// makeDurationReader binds time.Duration: a string parses with
// time.ParseDuration, a number counts nanoseconds.
func makeDurationReader(t reflect.Type) *typeReader {
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.String:
			d, _ := time.ParseDuration(s.ReadValue())
			va.SetInt(int64(d))
		case jsontext.Number:
			n, err := strconv.ParseInt(s.ReadValue(), 10, 64)
			if err != nil {
				n = 0
			}
			va.SetInt(n)
		default:
			return readSkip(s, va)
		}
		return nil
	}}
}

// makeDecimalReader binds decimal.Decimal from the lexical text of a
// number or the contents of a string.
func makeDecimalReader(t reflect.Type) *typeReader {
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		switch s.Kind() {
		case jsontext.Number, jsontext.String:
			d, err := decimal.NewFromString(s.ReadValue())
			if err != nil {
				d = decimal.Decimal{}
			}
			va.Set(reflect.ValueOf(d))
		default:
			return readSkip(s, va)
		}
		return nil
	}}
}

func makeValueReader(t reflect.Type) *typeReader {
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		va.Set(reflect.ValueOf(readValueTree(s)))
		return s.Err()
	}}
}

// makePtrReader wraps the element reader with null handling: a JSON null
// yields a nil pointer.
func makePtrReader(t reflect.Type) *typeReader {
	elemReader := lookupReader(t.Elem())
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		if s.Kind() == jsontext.Null {
			va.Set(reflect.Zero(t))
			s.NextToken()
			return nil
		}
		if va.IsNil() {
			va.Set(reflect.New(t.Elem()))
		}
		return elemReader.read(s, addressableValue{va.Elem()})
	}}
}

func makeMapReader(t reflect.Type) *typeReader {
	keyReader := lookupReader(t.Key())
	valReader := lookupReader(t.Elem())
	keyType, valType := t.Key(), t.Elem()
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		if s.Kind() != jsontext.ObjectStart {
			return readSkip(s, va)
		}
		if va.IsNil() {
			va.Set(reflect.MakeMap(t))
		}
		return eachObjectMember(s, keyType, valType, keyReader, valReader, func(kv, vv addressableValue) {
			va.SetMapIndex(kv.Value, vv.Value)
		})
	}}
}

func makeSliceReader(t reflect.Type) *typeReader {
	elemReader := lookupReader(t.Elem())
	elemType := t.Elem()
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		if s.Kind() != jsontext.ListStart {
			return readSkip(s, va)
		}
		va.SetLen(0)
		err := eachListElement(s, elemType, elemReader, func(ev addressableValue) {
			va.Set(reflect.Append(va.Value, ev.Value))
		})
		if va.IsNil() {
			va.Set(reflect.MakeSlice(t, 0, 0))
		}
		return err
	}}
}

func makeArrayReader(t reflect.Type) *typeReader {
	elemReader := lookupReader(t.Elem())
	elemType := t.Elem()
	n := t.Len()
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		if s.Kind() != jsontext.ListStart {
			return readSkip(s, va)
		}
		va.Set(reflect.Zero(t))
		i := 0
		return eachListElement(s, elemType, elemReader, func(ev addressableValue) {
			if i < n {
				va.Index(i).Set(ev.Value)
			}
			i++ // excess elements are consumed and dropped
		})
	}}
}

// makeStructReader binds a record type: each JSON member name is matched
// against the exported fields, exactly first and case-insensitively
// second; unmatched members are skipped whole. It returns nil when the
// type has no assignable members so that later strategies get a chance.
func makeStructReader(t reflect.Type) *typeReader {
	fields := makeStructFields(t)
	if len(fields.flattened) == 0 {
		return nil
	}
	for i := range fields.flattened {
		f := &fields.flattened[i]
		f.reader = lookupReader(t.FieldByIndex(f.index).Type)
	}
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		if s.Kind() != jsontext.ObjectStart {
			return readSkip(s, va)
		}
		s.NextToken()
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
			name := s.ReadValue()
			if s.Kind() == jsontext.Colon {
				s.NextToken()
			}
			f := fields.lookup(name)
			if f == nil {
				s.SkipElement()
				continue
			}
			fv := fieldByIndex(va, f.index)
			if err := f.reader.read(s, fv); err != nil {
				return err
			}
		}
	}}
}

// makeAnyReader binds the empty interface through the Any reader.
func makeAnyReader(t reflect.Type) *typeReader {
	return &typeReader{read: func(s *jsontext.Scanner, va addressableValue) error {
		v, err := readAnyValue(s, nil)
		if v == nil {
			va.Set(reflect.Zero(t))
		} else {
			va.Set(reflect.ValueOf(v))
		}
		return err
	}}
}
