// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/go-jsondata/jsondata/jsontext"
)

// This file contains an optimized binding implementation for the any type.
// This type is used whenever the program has no knowledge of the JSON
// schema, which is a common enough occurrence to justify dedicated logic.

// readAnyValue binds the element at the scanner position into the most
// natural Go value for its JSON kind: nil, bool, a promoted number,
// an interned string, a []any list, or an insertion-ordered object.
func readAnyValue(s *jsontext.Scanner, cache *stringCache) (any, error) {
	switch s.Kind() {
	case jsontext.Null:
		s.NextToken()
		return nil, s.Err()
	case jsontext.True:
		s.NextToken()
		return true, s.Err()
	case jsontext.False:
		s.NextToken()
		return false, s.Err()
	case jsontext.String:
		return readAnyString(s, cache), s.Err()
	case jsontext.Number:
		hasDecimal, hasExponent := s.HasDecimal(), s.HasExponent()
		return promoteNumber(s.ReadValue(), hasDecimal, hasExponent), s.Err()
	case jsontext.ListStart:
		return readAnyList(s, cache)
	case jsontext.ObjectStart:
		return readAnyObject(s, cache)
	default:
		s.SkipElement()
		return nil, s.Err()
	}
}

// readAnyString consumes a string token, deduplicating short values
// through the cache when the token can be viewed without decoding.
func readAnyString(s *jsontext.Scanner, cache *stringCache) string {
	if cache != nil && !s.HasEscapes() {
		if raw, ok := s.TokenRaw(); ok && len(raw) >= 2 && raw[len(raw)-1] == '"' {
			v := cache.make(raw[1 : len(raw)-1])
			s.NextToken()
			return v
		}
	}
	return s.ReadValue()
}

// promoteNumber interprets the lexical text of a number, trying int32,
// then int64, then float64, then decimal, and preserving the text itself
// when nothing applies.
func promoteNumber(text string, hasDecimal, hasExponent bool) any {
	if !hasDecimal && !hasExponent {
		if n, err := strconv.ParseInt(text, 10, 32); err == nil {
			return int32(n)
		}
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	if d, err := decimal.NewFromString(text); err == nil {
		return d
	}
	return text
}

func readAnyList(s *jsontext.Scanner, cache *stringCache) ([]any, error) {
	s.NextToken()
	list := []any{}
	for {
		for s.Kind() == jsontext.Comma {
			s.NextToken()
		}
		if s.Kind() == jsontext.ListEnd {
			s.NextToken()
			return list, s.Err()
		}
		if s.Kind() == jsontext.None {
			return list, s.Err()
		}
		v, err := readAnyValue(s, cache)
		if err != nil {
			return list, err
		}
		list = append(list, v)
	}
}

func readAnyObject(s *jsontext.Scanner, cache *stringCache) (OrderedObject, error) {
	if cache == nil {
		cache = new(stringCache)
	}
	s.NextToken()
	obj := OrderedObject{}
	for {
		for s.Kind() == jsontext.Comma {
			s.NextToken()
		}
		if s.Kind() == jsontext.ObjectEnd {
			s.NextToken()
			return obj, s.Err()
		}
		if s.Kind() == jsontext.None {
			return obj, s.Err()
		}
		if s.Kind() != jsontext.String {
			s.SkipElement()
			continue
		}
		name := readAnyString(s, cache)
		if s.Kind() == jsontext.Colon {
			s.NextToken()
		}
		v, err := readAnyValue(s, cache)
		if err != nil {
			return obj, err
		}
		obj = append(obj, ObjectMember{Name: name, Value: v})
	}
}
