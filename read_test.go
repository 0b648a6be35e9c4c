// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsondata

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-jsondata/jsondata/jsontext"
)

func scan(input string) *jsontext.Scanner {
	return jsontext.NewScanner(strings.NewReader(input))
}

func scanSmall(input string) *jsontext.Scanner {
	return jsontext.ScannerOptions{BufferSize: 16}.NewScanner(strings.NewReader(input))
}

func TestReadPrimitives(t *testing.T) {
	if v, err := Read[bool](scan(`true`)); err != nil || v != true {
		t.Errorf("Read[bool](true) = (%v, %v)", v, err)
	}
	if v, _ := Read[bool](scan(`"TRUE"`)); v != true {
		t.Errorf(`Read[bool]("TRUE") = %v, want true`, v)
	}
	if v, _ := Read[bool](scan(`[1]`)); v != false {
		t.Errorf("Read[bool]([1]) = %v, want false", v)
	}
	if v, _ := Read[string](scan(`"x"`)); v != "x" {
		t.Errorf(`Read[string]("x") = %q`, v)
	}
	if v, _ := Read[string](scan(`12.5`)); v != "12.5" {
		t.Errorf("Read[string](12.5) = %q, want lexical text", v)
	}
	if v, _ := Read[string](scan(`"ab\ncd"`)); v != "ab\ncd" || len(v) != 5 {
		t.Errorf(`Read[string]("ab\ncd") = %q (len %d), want 5 bytes`, v, len(v))
	}
	if v, _ := Read[int](scan(`42`)); v != 42 {
		t.Errorf("Read[int](42) = %d", v)
	}
	if v, _ := Read[int](scan(`"42"`)); v != 42 {
		t.Errorf(`Read[int]("42") = %d`, v)
	}
	if v, _ := Read[int8](scan(`1000`)); v != 0 {
		t.Errorf("Read[int8](1000) = %d, want default on overflow", v)
	}
	if v, _ := Read[int](scan(`"abc"`)); v != 0 {
		t.Errorf(`Read[int]("abc") = %d, want default`, v)
	}
	if v, _ := Read[uint16](scan(`-1`)); v != 0 {
		t.Errorf("Read[uint16](-1) = %d, want default", v)
	}
	if v, _ := Read[float64](scan(`-0.5e2`)); v != -50 {
		t.Errorf("Read[float64](-0.5e2) = %v", v)
	}
	if v, _ := Read[float32](scan(`null`)); v != 0 {
		t.Errorf("Read[float32](null) = %v, want 0", v)
	}
}

func TestReadNullable(t *testing.T) {
	if v, _ := Read[*int](scan(`null`)); v != nil {
		t.Errorf("Read[*int](null) = %v, want nil", v)
	}
	if v, _ := Read[*int](scan(`7`)); v == nil || *v != 7 {
		t.Errorf("Read[*int](7) = %v, want &7", v)
	}
	if v, _ := Read[*string](scan(`null`)); v != nil {
		t.Errorf("Read[*string](null) = %v, want nil", v)
	}
}

func TestReadCollections(t *testing.T) {
	if v, _ := Read[[]int](scan(`[1,2,3]`)); !reflect.DeepEqual(v, []int{1, 2, 3}) {
		t.Errorf("Read[[]int] = %v", v)
	}
	// Redundant commas are skipped and a missing comma does not abort.
	if v, _ := Read[[]int](scan(`[1,,2 3,]`)); !reflect.DeepEqual(v, []int{1, 2, 3}) {
		t.Errorf("Read[[]int] with stray commas = %v", v)
	}
	if v, _ := Read[[]int](scan(`null`)); v != nil {
		t.Errorf("Read[[]int](null) = %v, want nil", v)
	}
	if v, _ := Read[[2]int](scan(`[1,2,3]`)); v != [2]int{1, 2} {
		t.Errorf("Read[[2]int] = %v, want excess elements dropped", v)
	}
	if v, _ := Read[map[string]int](scan(`{"a":1,"b":2}`)); !reflect.DeepEqual(v, map[string]int{"a": 1, "b": 2}) {
		t.Errorf("Read[map[string]int] = %v", v)
	}
	if v, _ := Read[map[int]string](scan(`{"1":"one"}`)); !reflect.DeepEqual(v, map[int]string{1: "one"}) {
		t.Errorf("Read[map[int]string] = %v", v)
	}
}

func TestReadAny(t *testing.T) {
	if v, err := ReadAny(scan(`true`)); err != nil || v != true {
		t.Errorf("ReadAny(true) = (%v, %v)", v, err)
	}
	got, err := ReadAny(scan(`[1,"two",3.5,true,null]`))
	if err != nil {
		t.Fatal(err)
	}
	want := []any{int32(1), "two", 3.5, true, nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadAny list mismatch (-want +got):\n%s", diff)
	}

	obj, err := ReadAny(scan(`{"a":1,"b":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	wantObj := OrderedObject{{Name: "a", Value: int32(1)}, {Name: "b", Value: "x"}}
	if diff := cmp.Diff(wantObj, obj); diff != "" {
		t.Errorf("ReadAny object mismatch (-want +got):\n%s", diff)
	}
}

func TestAnyNumberPromotion(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{`1`, int32(1)},
		{`-2147483648`, int32(-2147483648)},
		{`2147483648`, int64(2147483648)},
		{`9223372036854775807`, int64(9223372036854775807)},
		{`18446744073709551615`, float64(18446744073709551615)},
		{`3.5`, 3.5},
		{`1e3`, 1000.0},
	}
	for _, tt := range tests {
		got, err := ReadAny(scan(tt.in))
		if err != nil {
			t.Fatalf("ReadAny(%q): %v", tt.in, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ReadAny(%q) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
		}
	}
}

type employee struct {
	Id      int64
	Name    string
	Reports []employee
}

func TestReadRecord(t *testing.T) {
	in := `{"id":1,"name":"a","reports":[{"id":2,"name":"b"},{"id":3,"name":"c"}]}`
	got, err := Read[employee](scan(in))
	if err != nil {
		t.Fatal(err)
	}
	want := employee{Id: 1, Name: "a", Reports: []employee{{Id: 2, Name: "b"}, {Id: 3, Name: "c"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRecordUnknownMembersSkipped(t *testing.T) {
	type rec struct {
		A int
		B string
	}
	in := `{"junk":{"deep":[1,2,{"x":null}]},"A":1,,"other":"ignored","b":"two"}`
	got, err := Read[rec](scan(in))
	if err != nil {
		t.Fatal(err)
	}
	if got != (rec{A: 1, B: "two"}) {
		t.Errorf("got %+v", got)
	}
}

func TestReadRecordTags(t *testing.T) {
	type rec struct {
		Renamed int    `json:"count"`
		Skip    string `json:"-"`
		Keep    string
	}
	got, _ := Read[rec](scan(`{"count":3,"Skip":"no","keep":"yes"}`))
	if got.Renamed != 3 || got.Skip != "" || got.Keep != "yes" {
		t.Errorf("got %+v", got)
	}
}

type nodeA struct {
	Name string
	B    *nodeB
}

type nodeB struct {
	As []nodeA
}

// Mutually referential record types must synthesize and bind finitely.
func TestReadCyclicTypes(t *testing.T) {
	in := `{"name":"root","b":{"as":[{"name":"leaf","b":null}]}}`
	got, err := Read[nodeA](scan(in))
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "root" || got.B == nil || len(got.B.As) != 1 || got.B.As[0].Name != "leaf" {
		t.Errorf("got %+v", got)
	}
}

func TestReadTimeTypes(t *testing.T) {
	if v, _ := Read[time.Time](scan(`"2023-04-05T06:07:08Z"`)); !v.Equal(time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)) {
		t.Errorf("Read[time.Time] = %v", v)
	}
	if v, _ := Read[time.Time](scan(`"not a date"`)); !v.IsZero() {
		t.Errorf("bad date = %v, want zero", v)
	}
	if v, _ := Read[time.Duration](scan(`"1h30m"`)); v != 90*time.Minute {
		t.Errorf("Read[time.Duration] = %v", v)
	}
	if v, _ := Read[time.Duration](scan(`1500000000`)); v != 1500*time.Millisecond {
		t.Errorf("numeric duration = %v, want nanosecond count", v)
	}
}

func TestReadUUID(t *testing.T) {
	want := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if v, _ := Read[uuid.UUID](scan(`"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`)); v != want {
		t.Errorf("Read[uuid.UUID] = %v", v)
	}
	if v, _ := Read[uuid.UUID](scan(`"nope"`)); v != uuid.Nil {
		t.Errorf("bad uuid = %v, want Nil", v)
	}
}

func TestReadDecimal(t *testing.T) {
	want := decimal.RequireFromString("123456789012345678901234567890.5")
	if v, _ := Read[decimal.Decimal](scan(`123456789012345678901234567890.5`)); !v.Equal(want) {
		t.Errorf("Read[decimal.Decimal] = %v", v)
	}
	if v, _ := Read[decimal.Decimal](scan(`"3.14"`)); !v.Equal(decimal.RequireFromString("3.14")) {
		t.Errorf("decimal from string = %v", v)
	}
}

// A type no strategy can serve binds through the null reader: the element
// is consumed and the zero value produced.
func TestReadUnsupportedType(t *testing.T) {
	s := scan(`[1,{"deep":true}] 42`)
	if v, err := Read[chan int](s); err != nil || v != nil {
		t.Errorf("Read[chan int] = (%v, %v), want (nil, nil)", v, err)
	}
	if v, _ := Read[int](s); v != 42 {
		t.Errorf("following Read[int] = %d, want 42; the skipped element must be fully consumed", v)
	}
}

type rawCapture struct {
	text string
}

func (r *rawCapture) ReadJSON(s *jsontext.Scanner) error {
	r.text = s.ElementText()
	return nil
}

func TestReadOverride(t *testing.T) {
	s := scan(`{"keep": [1, 2]} "after"`)
	got, err := Read[rawCapture](s)
	if err != nil {
		t.Fatal(err)
	}
	if got.text != `{"keep": [1, 2]}` {
		t.Errorf("ReadJSON captured %q", got.text)
	}
	if v, _ := Read[string](s); v != "after" {
		t.Errorf("following value = %q", v)
	}
}

type segmented struct {
	segs []string
}

func (s *segmented) AppendChunk(b []byte) { s.segs = append(s.segs, string(b)) }
func (s *segmented) Len() int {
	n := 0
	for _, seg := range s.segs {
		n += len(seg)
	}
	return n
}

func TestReadChunkSink(t *testing.T) {
	long := strings.Repeat("abc", 40)
	got, err := Read[segmented](scanSmall(`"` + long + `"`))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.segs) < 2 {
		t.Errorf("segments = %d, want several for a string exceeding the buffer", len(got.segs))
	}
	if strings.Join(got.segs, "") != long || got.Len() != len(long) {
		t.Errorf("reassembled %d bytes, want %d", got.Len(), len(long))
	}

	// A number streams through the sink as well.
	num, _ := Read[segmented](scan(`12.5`))
	if strings.Join(num.segs, "") != "12.5" {
		t.Errorf("number sink = %q", strings.Join(num.segs, ""))
	}
}

type intBag struct {
	Vals []int
}

func (b *intBag) Add(v int) { b.Vals = append(b.Vals, v) }

type attrSet struct {
	Keys []string
	Vals []string
}

func (m *attrSet) Add(k, v string) {
	m.Keys = append(m.Keys, k)
	m.Vals = append(m.Vals, v)
}

func TestReadAddMethod(t *testing.T) {
	if v, _ := Read[intBag](scan(`[1,2,3]`)); !reflect.DeepEqual(v.Vals, []int{1, 2, 3}) {
		t.Errorf("Read[intBag] = %+v", v)
	}
	v, _ := Read[attrSet](scan(`{"a":"1","b":"2"}`))
	if !reflect.DeepEqual(v.Keys, []string{"a", "b"}) || !reflect.DeepEqual(v.Vals, []string{"1", "2"}) {
		t.Errorf("Read[attrSet] = %+v", v)
	}
}

type tagSet struct {
	tags []string
}

func (t tagSet) ToBuilder() *tagSetBuilder { return &tagSetBuilder{} }

type tagSetBuilder struct {
	tags []string
}

func (b *tagSetBuilder) Add(s string)  { b.tags = append(b.tags, s) }
func (b *tagSetBuilder) Build() tagSet { return tagSet{tags: b.tags} }

func TestReadBuilder(t *testing.T) {
	v, err := Read[tagSet](scan(`["x","y"]`))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v.tags, []string{"x", "y"}) {
		t.Errorf("Read[tagSet] = %+v", v)
	}
}

func TestReaderFor(t *testing.T) {
	read := ReaderFor(reflect.TypeOf(int64(0)))
	v, err := read(scan(`99`))
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(99) {
		t.Errorf("ReaderFor(int64) = %v (%T)", v, v)
	}
}

// Interleaved readers sharing one scanner observe values in textual order,
// and every reader leaves the scanner exactly past the value it consumed.
func TestReadersInterleaved(t *testing.T) {
	s := scan(`[{"id":1}, "mid", 3]`)
	s.NextToken() // [
	if s.Kind() != jsontext.ListStart {
		t.Fatal("expected list start")
	}
	s.NextToken()
	type rec struct{ Id int }
	r1, _ := Read[rec](s)
	if s.Kind() == jsontext.Comma {
		s.NextToken()
	}
	r2, _ := Read[string](s)
	if s.Kind() == jsontext.Comma {
		s.NextToken()
	}
	r3, _ := Read[int](s)
	if r1.Id != 1 || r2 != "mid" || r3 != 3 {
		t.Errorf("interleaved reads = (%+v, %q, %d)", r1, r2, r3)
	}
	if s.Kind() != jsontext.ListEnd {
		t.Errorf("scanner at %v, want ListEnd", s.Kind())
	}
}

func TestKindSwitch(t *testing.T) {
	ks := KindSwitch{
		jsontext.String: func(s *jsontext.Scanner) (any, error) { return Read[string](s) },
		jsontext.Number: func(s *jsontext.Scanner) (any, error) { return Read[float64](s) },
	}
	if v, _ := ks.Read(scan(`"x"`)); v != "x" {
		t.Errorf("KindSwitch string = %v", v)
	}
	if v, _ := ks.Read(scan(`2.5`)); v != 2.5 {
		t.Errorf("KindSwitch number = %v", v)
	}
	s := scan(`[1,2] "after"`)
	if v, _ := ks.Read(s); v != nil {
		t.Errorf("KindSwitch unmatched = %v, want nil", v)
	}
	if v, _ := Read[string](s); v != "after" {
		t.Errorf("element after unmatched switch = %q", v)
	}
}

func TestReadSmallBuffers(t *testing.T) {
	in := `{"id":1,"name":"` + strings.Repeat("n", 80) + `","reports":[]}`
	got, err := Read[employee](scanSmall(in))
	if err != nil {
		t.Fatal(err)
	}
	if got.Id != 1 || len(got.Name) != 80 || len(got.Reports) != 0 {
		t.Errorf("got %+v", got)
	}
}
