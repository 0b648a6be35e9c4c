// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-jsondata/jsondata/jsontext"
)

// ReadState identifies where a DataReader stands within the tabular shape.
type ReadState int

const (
	ReadStateStart ReadState = iota
	ReadStateTableSet
	ReadStateTable
	ReadStateRowSet
	ReadStateRow
	ReadStateField
	ReadStateValue
)

// FieldReaderFunc binds the field value at the scanner position.
type FieldReaderFunc func(*jsontext.Scanner) (any, error)

// DataReaderOptions configures a DataReader.
// The zero value is equivalent to the default settings.
type DataReaderOptions struct {
	// ColumnReaders maps additional column type names (case-insensitive)
	// to field readers. It is consulted after the built-in vocabulary.
	ColumnReaders map[string]FieldReaderFunc
}

// DataReader iterates JSON tables row by row and field by field without
// buffering whole tables. The expected shape is a top-level list of table
// objects, or a single table object, each holding an optional "name",
// an optional "columns" list, and a "rows" list of lists.
//
// The usual loop is:
//
//	for d.NextTable() {
//		for d.NextRow() {
//			for d.NextField() {
//				v, _ := d.FieldValue()
//				...
//			}
//		}
//	}
//
// Calling NextTable or NextRow mid-structure skips whatever remains of the
// current row set or table on the caller's behalf.
type DataReader struct {
	s     *jsontext.Scanner
	opts  DataReaderOptions
	state ReadState

	tableName  string
	columns    Value
	fieldIndex int
}

// NewDataReader constructs a DataReader over s with default options.
func NewDataReader(s *jsontext.Scanner) *DataReader {
	return DataReaderOptions{}.NewDataReader(s)
}

// NewDataReader constructs a DataReader over s.
func (o DataReaderOptions) NewDataReader(s *jsontext.Scanner) *DataReader {
	return &DataReader{s: s, opts: o}
}

// State returns the current position within the tabular shape.
func (d *DataReader) State() ReadState { return d.state }

// TableName returns the name of the current table, or "".
func (d *DataReader) TableName() string { return d.tableName }

// Columns returns the raw column schema of the current table: a list
// whose entries are either strings or {name, type} objects.
func (d *DataReader) Columns() Value { return d.columns }

// FieldCount returns the number of declared columns.
func (d *DataReader) FieldCount() int { return d.columns.Len() }

// FieldIndex returns the zero-based index of the current field within the
// current row, or -1 before the first NextField call.
func (d *DataReader) FieldIndex() int { return d.fieldIndex }

// FieldName returns the declared name of column i, or "" when the schema
// does not cover it.
func (d *DataReader) FieldName(i int) string {
	entry := d.columns.Index(i)
	switch entry.Kind() {
	case jsontext.String:
		return entry.Text()
	case jsontext.ObjectStart:
		return entry.Get("name").Text()
	}
	return ""
}

// FieldType returns the declared type name of column i, or "" when the
// schema does not cover it or the entry carries no type.
func (d *DataReader) FieldType(i int) string {
	if entry := d.columns.Index(i); entry.Kind() == jsontext.ObjectStart {
		return entry.Get("type").Text()
	}
	return ""
}

// Err returns the first input failure encountered by the scanner.
func (d *DataReader) Err() error { return d.s.Err() }

// NextTable advances to the next table, skipping whatever remains of the
// current one, and parses its header up to and including the opening
// bracket of its rows. It reports false when the stream is exhausted.
func (d *DataReader) NextTable() bool { return d.nextTable() }

// NextTableContext is NextTable observing ctx at input reads.
func (d *DataReader) NextTableContext(ctx context.Context) bool {
	d.s.SetContext(ctx)
	defer d.s.SetContext(nil)
	return d.nextTable()
}

func (d *DataReader) nextTable() bool {
	switch d.state {
	case ReadStateStart:
		start(d.s)
		if d.s.Kind() == jsontext.ListStart {
			d.s.NextToken()
		}
		d.state = ReadStateTableSet
	case ReadStateRowSet, ReadStateRow, ReadStateField, ReadStateValue:
		for d.nextRow() {
		}
	}
	for {
		for d.s.Kind() == jsontext.Comma {
			d.s.NextToken()
		}
		switch d.s.Kind() {
		case jsontext.ObjectStart:
			if d.parseTableHeader() {
				return true
			}
		case jsontext.ListEnd:
			d.s.NextToken()
			return false
		case jsontext.None:
			return false
		default:
			d.s.SkipElement()
		}
	}
}

// parseTableHeader consumes table members until the rows list opens,
// caching the table name and column schema. It reports false for a table
// that closes without any rows, leaving the reader on the next table.
func (d *DataReader) parseTableHeader() bool {
	d.tableName, d.columns, d.fieldIndex = "", Value{}, -1
	d.state = ReadStateTable
	d.s.NextToken() // consume '{'
	for {
		for d.s.Kind() == jsontext.Comma {
			d.s.NextToken()
		}
		switch d.s.Kind() {
		case jsontext.ObjectEnd:
			d.s.NextToken()
			d.state = ReadStateTableSet
			return false
		case jsontext.None:
			d.state = ReadStateTableSet
			return false
		}
		if d.s.Kind() != jsontext.String {
			d.s.SkipElement()
			continue
		}
		name := d.s.ReadValue()
		if d.s.Kind() == jsontext.Colon {
			d.s.NextToken()
		}
		switch foldName(name) {
		case "name":
			if d.s.Kind() == jsontext.String {
				d.tableName = d.s.ReadValue()
			} else {
				d.s.SkipElement()
			}
		case "columns":
			d.columns = readValueTree(d.s)
		case "rows":
			if d.s.Kind() == jsontext.ListStart {
				d.s.NextToken()
				d.state = ReadStateRowSet
				return true
			}
			d.s.SkipElement()
		default:
			d.s.SkipElement()
		}
	}
}

// NextRow advances to the next row of the current table, skipping any
// unread fields of the current row. When the row set ends, it consumes the
// closing brackets of the row set and the table and reports false.
func (d *DataReader) NextRow() bool { return d.nextRow() }

// NextRowContext is NextRow observing ctx at input reads.
func (d *DataReader) NextRowContext(ctx context.Context) bool {
	d.s.SetContext(ctx)
	defer d.s.SetContext(nil)
	return d.nextRow()
}

func (d *DataReader) nextRow() bool {
	switch d.state {
	case ReadStateValue, ReadStateField, ReadStateRow:
		d.finishRow()
	}
	if d.state != ReadStateRowSet {
		return false
	}
	for {
		for d.s.Kind() == jsontext.Comma {
			d.s.NextToken()
		}
		switch d.s.Kind() {
		case jsontext.ListStart:
			d.s.NextToken()
			d.state = ReadStateRow
			d.fieldIndex = -1
			return true
		case jsontext.ListEnd:
			d.s.NextToken()
			d.finishTable()
			return false
		case jsontext.None:
			return false
		default:
			d.s.SkipElement()
		}
	}
}

// finishRow consumes whatever remains of the current row, through its
// closing bracket.
func (d *DataReader) finishRow() {
	if d.state == ReadStateValue {
		d.s.SkipElement()
		d.state = ReadStateField
	}
	for {
		for d.s.Kind() == jsontext.Comma {
			d.s.NextToken()
		}
		switch d.s.Kind() {
		case jsontext.ListEnd:
			d.s.NextToken()
			d.state = ReadStateRowSet
			return
		case jsontext.None:
			d.state = ReadStateRowSet
			return
		default:
			d.s.SkipElement()
		}
	}
}

// finishTable consumes any members after the rows list, through the
// table's closing brace.
func (d *DataReader) finishTable() {
	for {
		switch d.s.Kind() {
		case jsontext.Comma, jsontext.Colon:
			d.s.NextToken()
		case jsontext.ObjectEnd:
			d.s.NextToken()
			d.state = ReadStateTableSet
			return
		case jsontext.None:
			d.state = ReadStateTableSet
			return
		default:
			d.s.SkipElement()
		}
	}
}

// NextField advances to the next field of the current row, skipping the
// current field's value if it was not read. It reports false at the end of
// the row and transitions back to the row set.
func (d *DataReader) NextField() bool { return d.nextField() }

// NextFieldContext is NextField observing ctx at input reads.
func (d *DataReader) NextFieldContext(ctx context.Context) bool {
	d.s.SetContext(ctx)
	defer d.s.SetContext(nil)
	return d.nextField()
}

func (d *DataReader) nextField() bool {
	switch d.state {
	case ReadStateValue:
		d.s.SkipElement()
		d.state = ReadStateField
	case ReadStateRow, ReadStateField:
	default:
		return false
	}
	for d.s.Kind() == jsontext.Comma {
		d.s.NextToken()
	}
	switch d.s.Kind() {
	case jsontext.ListEnd:
		d.s.NextToken()
		d.state = ReadStateRowSet
		return false
	case jsontext.None:
		return false
	}
	d.fieldIndex++
	d.state = ReadStateValue
	return true
}

// FieldValue reads the current field with the reader chosen by its
// declared column type: the built-in vocabulary is consulted first, then
// the ColumnReaders option, and anything else falls through to Any.
func (d *DataReader) FieldValue() (any, error) {
	if d.state != ReadStateValue {
		return nil, nil
	}
	r := d.fieldReader(d.FieldType(d.fieldIndex))
	v, err := r(d.s)
	d.state = ReadStateField
	return v, err
}

// FieldValueAs reads the current field into a value of type t through the
// reader registry.
func (d *DataReader) FieldValueAs(t reflect.Type) (any, error) {
	if d.state != ReadStateValue {
		return nil, nil
	}
	v, err := ReaderFor(t)(d.s)
	d.state = ReadStateField
	return v, err
}

// ReadField reads the current field of d into a value of type T.
func ReadField[T any](d *DataReader) (T, error) {
	var zero T
	if d.state != ReadStateValue {
		return zero, nil
	}
	v, err := Read[T](d.s)
	d.state = ReadStateField
	return v, err
}

// ReadRow binds the remaining fields of the current row onto the record
// type T by treating the column schema as a virtual object: each column
// name selects the matching member (case-insensitive), and columns with no
// matching member are read and discarded.
func ReadRow[T any](d *DataReader) (T, error) {
	var out T
	va := addressableValue{reflect.ValueOf(&out).Elem()}
	if va.Kind() != reflect.Struct {
		return out, &SemanticError{action: "bind", GoType: va.Type(), Err: errNotRecord}
	}
	fields := lookupRowFields(va.Type())
	for d.nextField() {
		f := fields.lookup(d.FieldName(d.fieldIndex))
		if f == nil {
			if _, err := d.FieldValue(); err != nil {
				return out, err
			}
			continue
		}
		fv := fieldByIndex(va, f.index)
		if err := f.reader.read(d.s, fv); err != nil {
			return out, err
		}
		d.state = ReadStateField
	}
	return out, d.s.Err()
}

const errNotRecord = jsonError("row binding requires a struct target")

var rowFieldsCache sync.Map // map[reflect.Type]*structFields

func lookupRowFields(t reflect.Type) *structFields {
	if v, ok := rowFieldsCache.Load(t); ok {
		return v.(*structFields)
	}
	fs := makeStructFields(t)
	for i := range fs.flattened {
		f := &fs.flattened[i]
		f.reader = lookupReader(t.FieldByIndex(f.index).Type)
	}
	v, _ := rowFieldsCache.LoadOrStore(t, &fs)
	return v.(*structFields)
}

func (d *DataReader) fieldReader(typeName string) FieldReaderFunc {
	if r, ok := builtinColumnReaders[foldName(typeName)]; ok {
		return r
	}
	folded := foldName(typeName)
	for name, r := range d.opts.ColumnReaders {
		if foldName(name) == folded {
			return r
		}
	}
	return readAnyField
}

func readAnyField(s *jsontext.Scanner) (any, error) {
	return readAnyValue(s, nil)
}

func typedFieldReader[T any]() FieldReaderFunc {
	return func(s *jsontext.Scanner) (any, error) {
		return Read[T](s)
	}
}

// builtinColumnReaders is the recognized column type vocabulary.
// Lookup keys are folded, so matching is case-insensitive.
var builtinColumnReaders = map[string]FieldReaderFunc{
	"object":   readAnyField,
	"string":   typedFieldReader[string](),
	"byte":     typedFieldReader[uint8](),
	"uint8":    typedFieldReader[uint8](),
	"sbyte":    typedFieldReader[int8](),
	"int8":     typedFieldReader[int8](),
	"short":    typedFieldReader[int16](),
	"int16":    typedFieldReader[int16](),
	"ushort":   typedFieldReader[uint16](),
	"uint16":   typedFieldReader[uint16](),
	"int":      typedFieldReader[int32](),
	"int32":    typedFieldReader[int32](),
	"uint":     typedFieldReader[uint32](),
	"uint32":   typedFieldReader[uint32](),
	"long":     typedFieldReader[int64](),
	"int64":    typedFieldReader[int64](),
	"ulong":    typedFieldReader[uint64](),
	"uint64":   typedFieldReader[uint64](),
	"double":   typedFieldReader[float64](),
	"real":     typedFieldReader[float64](),
	"float":    typedFieldReader[float32](),
	"single":   typedFieldReader[float32](),
	"decimal":  typedFieldReader[decimal.Decimal](),
	"datetime": typedFieldReader[time.Time](),
	"timespan": typedFieldReader[time.Duration](),
	"guid":     typedFieldReader[uuid.UUID](),
	"bool":     typedFieldReader[bool](),
	"boolean":  typedFieldReader[bool](),
	"json":     typedFieldReader[Value](),
}
