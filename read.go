// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"context"
	"reflect"

	"github.com/go-jsondata/jsondata/jsontext"
)

// Read binds the element at the scanner position into a value of type T,
// leaving the scanner on the token following the element. A scanner that
// has not been advanced yet is advanced to its first token.
//
// Binding is permissive: input of the wrong shape is skipped and yields
// the zero value. The only errors reported are input failures.
func Read[T any](s *jsontext.Scanner) (T, error) {
	var out T
	va := addressableValue{reflect.ValueOf(&out).Elem()}
	start(s)
	if err := lookupReader(va.Type()).read(s, va); err != nil {
		return out, err
	}
	return out, wrapReadError(va.Type(), s)
}

// ReadContext is Read observing ctx whenever the scanner reads more input.
func ReadContext[T any](ctx context.Context, s *jsontext.Scanner) (T, error) {
	s.SetContext(ctx)
	defer s.SetContext(nil)
	return Read[T](s)
}

// ReadAny binds the element at the scanner position into the most natural
// Go value for its JSON kind: nil, bool, int32, int64, float64,
// decimal.Decimal, string, []any, or an insertion-ordered OrderedObject.
func ReadAny(s *jsontext.Scanner) (any, error) {
	start(s)
	return readAnyValue(s, nil)
}

// ReadAnyContext is ReadAny observing ctx whenever the scanner reads more
// input.
func ReadAnyContext(ctx context.Context, s *jsontext.Scanner) (any, error) {
	s.SetContext(ctx)
	defer s.SetContext(nil)
	return ReadAny(s)
}

// ReadTree binds the element at the scanner position into a Value tree.
func ReadTree(s *jsontext.Scanner) (Value, error) {
	start(s)
	v := readValueTree(s)
	return v, s.Err()
}

// ReaderFor returns a type-erased reader bound to t, for callers that
// select target types at run time. The reader it returns binds the element
// at the scanner position and yields the bound value.
func ReaderFor(t reflect.Type) func(*jsontext.Scanner) (any, error) {
	r := lookupReader(t)
	return func(s *jsontext.Scanner) (any, error) {
		va := newAddressableValue(t)
		start(s)
		if err := r.read(s, va); err != nil {
			return va.Interface(), err
		}
		return va.Interface(), wrapReadError(t, s)
	}
}

// KindSwitch is a discriminated composition of readers: binding selects
// the entry matching the current token kind. Kinds with no entry are
// skipped and yield nil, preserving the invariant that the element is
// always consumed.
type KindSwitch map[jsontext.Kind]func(*jsontext.Scanner) (any, error)

// Read binds the element at the scanner position through the entry for
// its token kind.
func (ks KindSwitch) Read(s *jsontext.Scanner) (any, error) {
	start(s)
	if read, ok := ks[s.Kind()]; ok {
		return read(s)
	}
	s.SkipElement()
	return nil, s.Err()
}

// start advances a scanner that has not classified a token yet.
func start(s *jsontext.Scanner) {
	if s.Kind() == jsontext.None {
		s.NextToken()
	}
}
