// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

// OrderedObject is an insertion-ordered collection of name/value members,
// produced by the Any reader for JSON objects so that member order is not
// lost to map iteration.
type OrderedObject []ObjectMember

// ObjectMember is a single name/value pair of an OrderedObject.
type ObjectMember struct {
	Name  string
	Value any
}

// Get returns the value of the first member with the given name.
func (o OrderedObject) Get(name string) (any, bool) {
	for i := range o {
		if o[i].Name == name {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Names returns the member names in insertion order.
func (o OrderedObject) Names() []string {
	names := make([]string, len(o))
	for i := range o {
		names[i] = o[i].Name
	}
	return names
}
