// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-jsondata/jsondata/jsontext"
)

const errorPrefix = "jsondata: "

// Error matches errors returned by this package according to errors.Is.
const Error = jsonError("jsondata error")

type jsonError string

func (e jsonError) Error() string {
	return string(e)
}
func (e jsonError) Is(target error) bool {
	return e == target || target == Error
}

// SemanticError describes an error determining the meaning
// of JSON data as Go data.
//
// The contents of this error as produced by this package may change over time.
type SemanticError struct {
	action string // either "read" or "bind"

	// ByteOffset indicates that an error occurred after this byte offset.
	ByteOffset int64

	// JSONKind is the JSON kind that could not be handled.
	JSONKind jsontext.Kind // may be zero if unknown
	// GoType is the Go type that could not be handled.
	GoType reflect.Type // may be nil if unknown

	// Err is the underlying error.
	Err error // may be nil
}

func (e *SemanticError) Error() string {
	var sb strings.Builder
	sb.WriteString(errorPrefix)

	switch e.action {
	case "read":
		sb.WriteString("cannot read")
	case "bind":
		sb.WriteString("cannot bind")
	default:
		sb.WriteString("cannot handle")
	}

	switch e.JSONKind {
	case jsontext.Null:
		sb.WriteString(" JSON null")
	case jsontext.True, jsontext.False:
		sb.WriteString(" JSON boolean")
	case jsontext.String:
		sb.WriteString(" JSON string")
	case jsontext.Number:
		sb.WriteString(" JSON number")
	case jsontext.ObjectStart, jsontext.ObjectEnd:
		sb.WriteString(" JSON object")
	case jsontext.ListStart, jsontext.ListEnd:
		sb.WriteString(" JSON list")
	}

	if e.GoType != nil {
		sb.WriteString(" into Go value of type ")
		sb.WriteString(e.GoType.String())
	}

	if e.ByteOffset > 0 {
		sb.WriteString(" after byte offset ")
		sb.WriteString(strconv.FormatInt(e.ByteOffset, 10))
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}
func (e *SemanticError) Is(target error) bool {
	return e == target || target == Error || errors.Is(e.Err, target)
}
func (e *SemanticError) Unwrap() error {
	return e.Err
}

// wrapReadError decorates a scanner input failure with the target type.
func wrapReadError(t reflect.Type, s *jsontext.Scanner) error {
	if err := s.Err(); err != nil {
		return &SemanticError{action: "read", ByteOffset: s.Position(), GoType: t, Err: err}
	}
	return nil
}
