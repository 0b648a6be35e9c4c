// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonwire

import "testing"

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name       string
		src        string // starts just after the opening quote
		done       bool
		wantSrc    int
		wantOut    string
		wantEsc    bool
		wantStatus StringStatus
	}{{
		name:       "Plain",
		src:        `abc"`,
		wantSrc:    4,
		wantOut:    "abc",
		wantStatus: StringComplete,
	}, {
		name:       "SimpleEscapes",
		src:        `a\n\t\"\\\/"`,
		wantSrc:    12,
		wantOut:    "a\n\t\"\\/",
		wantEsc:    true,
		wantStatus: StringComplete,
	}, {
		name:       "UnknownEscapeYieldsLiteral",
		src:        `\q"`,
		wantSrc:    3,
		wantOut:    "q",
		wantEsc:    true,
		wantStatus: StringComplete,
	}, {
		name:       "UnicodeEscape",
		src:        `\u2603"`,
		wantSrc:    7,
		wantOut:    "☃",
		wantEsc:    true,
		wantStatus: StringComplete,
	}, {
		name:       "SurrogateHalvesEncodedIndividually",
		src:        `\ud83d\ude00"`,
		wantSrc:    13,
		wantOut:    "\xed\xa0\xbd\xed\xb8\x80",
		wantEsc:    true,
		wantStatus: StringComplete,
	}, {
		name:       "StraddlingBackslash",
		src:        `ab\`,
		wantSrc:    2,
		wantOut:    "ab",
		wantEsc:    true,
		wantStatus: StringNeedMore,
	}, {
		name:       "StraddlingUnicodeEscape",
		src:        `ab\u12`,
		wantSrc:    2,
		wantOut:    "ab",
		wantEsc:    true,
		wantStatus: StringNeedMore,
	}, {
		name:       "TruncatedUnicodeEscapeAtEnd",
		src:        `\u12`,
		done:       true,
		wantSrc:    4,
		wantOut:    "\x12",
		wantEsc:    true,
		wantStatus: StringEnd,
	}, {
		name:       "UnterminatedAtEnd",
		src:        `abc`,
		done:       true,
		wantSrc:    3,
		wantOut:    "abc",
		wantStatus: StringEnd,
	}, {
		name:       "MidStringNeedMore",
		src:        `abc`,
		wantSrc:    3,
		wantOut:    "abc",
		wantStatus: StringNeedMore,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, 64)
			nsrc, ndst, esc, status := DecodeString([]byte(tt.src), dst, tt.done)
			if nsrc != tt.wantSrc || string(dst[:ndst]) != tt.wantOut || esc != tt.wantEsc || status != tt.wantStatus {
				t.Errorf("DecodeString(%q, dst, %v) = (%d, %q, %v, %v), want (%d, %q, %v, %v)",
					tt.src, tt.done, nsrc, dst[:ndst], esc, status,
					tt.wantSrc, tt.wantOut, tt.wantEsc, tt.wantStatus)
			}

			// Count-only mode must agree with the writing mode.
			cnsrc, cndst, cesc, cstatus := DecodeString([]byte(tt.src), nil, tt.done)
			if cnsrc != nsrc || cndst != ndst || cesc != esc || cstatus != status {
				t.Errorf("count-only DecodeString disagrees: (%d, %d, %v, %v) vs (%d, %d, %v, %v)",
					cnsrc, cndst, cesc, cstatus, nsrc, ndst, esc, status)
			}
		})
	}
}

func TestDecodeStringDstFull(t *testing.T) {
	dst := make([]byte, 2)
	nsrc, ndst, _, status := DecodeString([]byte(`abcd"`), dst, false)
	if status != StringDstFull || nsrc != 2 || string(dst[:ndst]) != "ab" {
		t.Errorf("DecodeString = (%d, %q, %v), want (2, \"ab\", StringDstFull)", nsrc, dst[:ndst], status)
	}

	// An escape never splits across the destination boundary.
	dst = make([]byte, 2)
	nsrc, ndst, _, status = DecodeString([]byte("a\\u2603\""), dst, false)
	if status != StringDstFull || nsrc != 1 || string(dst[:ndst]) != "a" {
		t.Errorf("DecodeString = (%d, %q, %v), want (1, \"a\", StringDstFull)", nsrc, dst[:ndst], status)
	}
}
