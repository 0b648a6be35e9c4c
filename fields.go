// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// structField describes one assignable member of a record type.
type structField struct {
	index  []int // index path into the struct, through embedded fields
	name   string
	reader *typeReader
}

// structFields indexes the assignable members of a record type by their
// JSON member names: exact matches first, then a case-insensitive fallback
// through the folded-name index.
type structFields struct {
	flattened    []structField
	byActualName map[string]*structField
	byFoldedName map[string][]*structField
}

func (fs *structFields) lookup(name string) *structField {
	if f, ok := fs.byActualName[name]; ok {
		return f
	}
	for _, f := range fs.byFoldedName[foldName(name)] {
		return f
	}
	return nil
}

// makeStructFields collects the exported fields of t, recursing through
// embedded structs. A `json` tag supplies an alternate member name, and a
// `json:"-"` tag ignores the field. The first field seen for a name wins.
func makeStructFields(t reflect.Type) structFields {
	fs := structFields{
		byActualName: make(map[string]*structField),
		byFoldedName: make(map[string][]*structField),
	}
	fs.appendFields(t, nil)
	for i := range fs.flattened {
		f := &fs.flattened[i]
		fs.byActualName[f.name] = f
		folded := foldName(f.name)
		fs.byFoldedName[folded] = append(fs.byFoldedName[folded], f)
	}
	return fs
}

func (fs *structFields) appendFields(t reflect.Type, index []int) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, _ := sf.Tag.Lookup("json")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && tag == "" {
			fs.appendFields(sf.Type, append(append([]int(nil), index...), i))
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if opt, _, _ := strings.Cut(tag, ","); opt != "" {
			name = opt
		}
		if fs.seen(name) {
			continue
		}
		fs.flattened = append(fs.flattened, structField{
			index: append(append([]int(nil), index...), i),
			name:  name,
		})
	}
}

func (fs *structFields) seen(name string) bool {
	for i := range fs.flattened {
		if fs.flattened[i].name == name {
			return true
		}
	}
	return false
}

// foldName returns a canonical form of name such that
// foldName(x) == foldName(y) when x and y match case-insensitively.
func foldName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			if 'A' <= r && r <= 'Z' {
				r += 'a' - 'A'
			}
			b.WriteRune(r)
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// fieldByIndex resolves the field at the given index path, allocating
// through nil embedded pointers along the way.
func fieldByIndex(va addressableValue, index []int) addressableValue {
	for _, i := range index {
		if va.Kind() == reflect.Pointer {
			if va.IsNil() {
				va.Set(reflect.New(va.Type().Elem()))
			}
			va = addressableValue{va.Elem()}
		}
		va = addressableValue{va.Field(i)} // addressable if struct value is addressable
	}
	return va
}
