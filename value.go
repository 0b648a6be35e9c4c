// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/go-jsondata/jsondata/jsontext"
)

// Value is a parsed JSON element: a null, boolean, number, string, list,
// or object. Numbers keep their lexical text; numeric interpretation is
// deferred to typed binding. Object members preserve their input order.
//
// The zero Value is the JSON null.
type Value struct {
	kind    jsontext.Kind
	text    string // Number and String
	list    []Value
	members []Member
}

// Member is a single name/value pair of an object Value.
type Member struct {
	Name  string
	Value Value
}

// NullValue is the JSON null.
var NullValue = Value{}

// BoolValue returns the JSON true or false.
func BoolValue(b bool) Value {
	if b {
		return Value{kind: jsontext.True}
	}
	return Value{kind: jsontext.False}
}

// NumberValue returns a JSON number holding the given lexical text.
func NumberValue(text string) Value {
	return Value{kind: jsontext.Number, text: text}
}

// StringValue returns a JSON string.
func StringValue(s string) Value {
	return Value{kind: jsontext.String, text: s}
}

// ListValue returns a JSON list of the given elements.
func ListValue(elems ...Value) Value {
	return Value{kind: jsontext.ListStart, list: slices.Clone(elems)}
}

// ObjectValue returns a JSON object of the given members.
func ObjectValue(members ...Member) Value {
	return Value{kind: jsontext.ObjectStart, members: slices.Clone(members)}
}

// Kind returns the token kind the value was built from: Null, True, False,
// Number, String, ListStart, or ObjectStart. The zero Value reports Null.
func (v Value) Kind() jsontext.Kind {
	if v.kind == jsontext.None {
		return jsontext.Null
	}
	return v.kind
}

// Text returns the string contents of a String value or the lexical text
// of a Number value, and "" for every other kind.
func (v Value) Text() string {
	return v.text
}

// Len returns the number of elements of a list or members of an object.
func (v Value) Len() int {
	if v.kind == jsontext.ObjectStart {
		return len(v.members)
	}
	return len(v.list)
}

// Index returns the i-th element of a list value, or the null value when
// out of range.
func (v Value) Index(i int) Value {
	if i < 0 || i >= len(v.list) {
		return Value{}
	}
	return v.list[i]
}

// Members returns the members of an object value in input order.
func (v Value) Members() []Member {
	return v.members
}

// Get returns the value of the named object member, trying an exact match
// first and a case-insensitive match second. It returns the null value
// when the member is absent.
func (v Value) Get(name string) Value {
	for i := range v.members {
		if v.members[i].Name == name {
			return v.members[i].Value
		}
	}
	folded := foldName(name)
	for i := range v.members {
		if foldName(v.members[i].Name) == folded {
			return v.members[i].Value
		}
	}
	return Value{}
}

// Equal reports whether v and w are structurally equal: same kind, same
// text, and pairwise equal elements and members (names compared exactly).
func (v Value) Equal(w Value) bool {
	if v.Kind() != w.Kind() {
		return false
	}
	switch v.Kind() {
	case jsontext.Number, jsontext.String:
		return v.text == w.text
	case jsontext.ListStart:
		return slices.EqualFunc(v.list, w.list, Value.Equal)
	case jsontext.ObjectStart:
		return slices.EqualFunc(v.members, w.members, func(a, b Member) bool {
			return a.Name == b.Name && a.Value.Equal(b.Value)
		})
	}
	return true
}

// String renders the value as compact JSON text.
func (v Value) String() string {
	var b strings.Builder
	v.render(&b)
	return b.String()
}

func (v Value) render(b *strings.Builder) {
	switch v.kind {
	case jsontext.True:
		b.WriteString("true")
	case jsontext.False:
		b.WriteString("false")
	case jsontext.Number:
		b.WriteString(v.text)
	case jsontext.String:
		appendQuoted(b, v.text)
	case jsontext.ListStart:
		b.WriteByte('[')
		for i := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			v.list[i].render(b)
		}
		b.WriteByte(']')
	case jsontext.ObjectStart:
		b.WriteByte('{')
		for i := range v.members {
			if i > 0 {
				b.WriteByte(',')
			}
			appendQuoted(b, v.members[i].Name)
			b.WriteByte(':')
			v.members[i].Value.render(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}

func appendQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			b.WriteString(`\u00`)
			const hex = "0123456789abcdef"
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0xf])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}

// readValueTree binds the element at the scanner position into a Value.
func readValueTree(s *jsontext.Scanner) Value {
	switch s.Kind() {
	case jsontext.Null:
		s.NextToken()
		return Value{kind: jsontext.Null}
	case jsontext.True:
		s.NextToken()
		return Value{kind: jsontext.True}
	case jsontext.False:
		s.NextToken()
		return Value{kind: jsontext.False}
	case jsontext.Number:
		return Value{kind: jsontext.Number, text: s.ReadValue()}
	case jsontext.String:
		return Value{kind: jsontext.String, text: s.ReadValue()}
	case jsontext.ListStart:
		v := Value{kind: jsontext.ListStart}
		s.NextToken()
		for {
			for s.Kind() == jsontext.Comma {
				s.NextToken()
			}
			if s.Kind() == jsontext.ListEnd {
				s.NextToken()
				break
			}
			if s.Kind() == jsontext.None {
				break
			}
			v.list = append(v.list, readValueTree(s))
		}
		return v
	case jsontext.ObjectStart:
		v := Value{kind: jsontext.ObjectStart}
		s.NextToken()
		for {
			for s.Kind() == jsontext.Comma {
				s.NextToken()
			}
			if s.Kind() == jsontext.ObjectEnd {
				s.NextToken()
				break
			}
			if s.Kind() == jsontext.None {
				break
			}
			if s.Kind() != jsontext.String {
				s.SkipElement()
				continue
			}
			name := s.ReadValue()
			if s.Kind() == jsontext.Colon {
				s.NextToken()
			}
			v.members = append(v.members, Member{Name: name, Value: readValueTree(s)})
		}
		return v
	default:
		s.SkipElement()
		return Value{}
	}
}
