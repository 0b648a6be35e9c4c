// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsondata binds streaming JSON into Go values.
//
// The package splits the work into a syntactic and a semantic layer.
// The jsontext subpackage scans JSON text one token at a time over a
// bounded working buffer, delivering oversized token values in chunks so
// that long strings never have to be materialized whole. This package
// composes typed readers over that scanner: primitives, collections,
// dictionaries, and record types bound through a registry keyed by target
// type, with readers for new types synthesized on first request by
// structural inspection. On top of both sits DataReader, which interprets
// the tabular {name, columns, rows} shape table by table, row by row, and
// field by field.
//
// Binding is deliberately permissive: values of an unexpected shape are
// skipped and yield zero values, unparsable numbers and dates yield zero
// values, and unknown object members are discarded. Callers needing strict
// validation layer it on top.
package jsondata
