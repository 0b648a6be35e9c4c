// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsontext

import (
	"strings"
	"testing"
)

func TestSourceFillAndCompact(t *testing.T) {
	src := source{rd: strings.NewReader("abcdefgh"), buf: make([]byte, 4)}
	if !src.fill(nil, false) {
		t.Fatal("first fill = false, want true")
	}
	if src.n != 4 || src.peek(0) != 'a' {
		t.Fatalf("after fill: n=%d peek=%q", src.n, src.peek(0))
	}
	src.advance(3)
	if src.peek(0) != 'd' || src.peek(1) != 0 {
		t.Fatalf("peek after advance = (%q, %q), want ('d', NUL)", src.peek(0), src.peek(1))
	}

	// Compaction must rebase the logical start and any outstanding offset.
	tokStart := 3
	if !src.fill(nil, false, &tokStart) {
		t.Fatal("second fill = false, want true")
	}
	if src.off != 0 || tokStart != 0 || src.start != 3 {
		t.Fatalf("after compaction: off=%d tokStart=%d start=%d", src.off, tokStart, src.start)
	}
	if src.peek(0) != 'd' {
		t.Fatalf("peek after compaction = %q, want 'd'", src.peek(0))
	}
}

func TestSourceGrow(t *testing.T) {
	src := source{rd: strings.NewReader("0123456789"), buf: make([]byte, 4)}
	src.fill(nil, false)
	if src.fill(nil, false) {
		t.Fatal("fill of a full buffer without grow reported new bytes")
	}
	if !src.fill(nil, true) {
		t.Fatal("growing fill = false, want true")
	}
	if len(src.buf) != 8 || src.n != 8 {
		t.Fatalf("after grow: len=%d n=%d, want 8, 8", len(src.buf), src.n)
	}
	if string(src.buf[:src.n]) != "01234567" {
		t.Fatalf("buffer contents = %q", src.buf[:src.n])
	}
}

func TestSourceDoneLatches(t *testing.T) {
	src := source{rd: strings.NewReader("ab"), buf: make([]byte, 4)}
	src.fill(nil, false)
	src.advance(2)
	if src.fill(nil, false) {
		t.Fatal("fill at EOF reported new bytes")
	}
	if !src.done || src.err != nil {
		t.Fatalf("done=%v err=%v, want latched done with nil err", src.done, src.err)
	}
	if src.fill(nil, false) {
		t.Fatal("fill after done reported new bytes")
	}
}
