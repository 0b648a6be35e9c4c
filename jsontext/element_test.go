// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsontext

import (
	"strings"
	"testing"
)

func TestElementText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // element text; input continues with " true"
	}{{
		name: "Scalar",
		in:   `42`,
		want: `42`,
	}, {
		name: "String",
		in:   `"a\nb"`,
		want: `"a\nb"`,
	}, {
		name: "FlatList",
		in:   `[1,2,3]`,
		want: `[1,2,3]`,
	}, {
		name: "WhitespacePreserved",
		in:   "{ \"a\" :\t[ 1 ,\n2 ] }",
		want: "{ \"a\" :\t[ 1 ,\n2 ] }",
	}, {
		name: "Nested",
		in:   `{"a":{"b":[{}, []]},"c":null}`,
		want: `{"a":{"b":[{}, []]},"c":null}`,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, size := range []int{0, 16, 23} {
				s := ScannerOptions{BufferSize: size}.NewScanner(strings.NewReader(tt.in + " true"))
				s.NextToken()
				if got := s.ElementText(); got != tt.want {
					t.Errorf("ElementText (size %d) = %q, want %q", size, got, tt.want)
				}
				if s.Kind() != True {
					t.Errorf("Kind after element (size %d) = %v, want True", size, s.Kind())
				}
			}
		})
	}
}

func TestNextElementChunkBounded(t *testing.T) {
	long := strings.Repeat(`"padding", `, 20)
	in := `[` + long + `0]`
	s := ScannerOptions{BufferSize: 16}.NewScanner(strings.NewReader(in))
	s.NextToken()
	var b strings.Builder
	chunks := 0
	for s.NextElementChunk() {
		chunk := s.ElementChunk()
		if len(chunk) > 2*16 {
			t.Errorf("chunk of %d bytes exceeds the working buffer bound", len(chunk))
		}
		b.Write(chunk)
		chunks++
	}
	if chunks < 2 {
		t.Errorf("chunks = %d, want several for a subtree exceeding the buffer", chunks)
	}
	if b.String() != in {
		t.Errorf("reassembled element = %q, want %q", b.String(), in)
	}
}

func TestElementTextOversizedString(t *testing.T) {
	in := `{"k":"` + strings.Repeat("v", 100) + `"}`
	s := ScannerOptions{BufferSize: 16}.NewScanner(strings.NewReader(in))
	s.NextToken()
	if got := s.ElementText(); got != in {
		t.Errorf("ElementText = %q, want %q", got, in)
	}
}

func TestElementTextTruncatedInput(t *testing.T) {
	s := NewScanner(strings.NewReader(`[1, 2`))
	s.NextToken()
	if got := s.ElementText(); got != `[1, 2` {
		t.Errorf("ElementText = %q, want the partial subtree text", got)
	}
	if s.NextToken() {
		t.Error("NextToken = true after exhausted input")
	}
}
