// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsontext

import (
	"context"
	"strings"
)

// The element walker surfaces whole JSON elements as raw text chunks.
// A literal element delegates to token chunking; a list or object subtree
// is walked with whitespace surfaced as tokens so that the concatenated
// chunks reproduce the exact input substring of the element, up to and
// including the matching close.

type elementMode byte

const (
	elemIdle elementMode = iota
	elemLiteral
	elemTree
	elemDone
)

type elementState struct {
	mode  elementMode
	depth int
}

// NextElementChunk produces the next raw text chunk of the current
// element. A chunk is shorter than twice the working buffer size. It reports false
// once the element has been fully emitted, leaving the scanner on the
// token following the element.
func (s *Scanner) NextElementChunk() bool { return s.nextElementChunk() }

// NextElementChunkContext is NextElementChunk observing ctx at input reads.
func (s *Scanner) NextElementChunkContext(ctx context.Context) bool {
	defer s.setContext(ctx)()
	return s.nextElementChunk()
}

// ElementChunk returns the raw text of the chunk produced by the last
// NextElementChunk call, valid only until the next scanner mutation.
func (s *Scanner) ElementChunk() []byte {
	s.checkChunk()
	if s.elemView != nil {
		return s.elemView
	}
	return s.src.buf[s.rawOff : s.rawOff+s.rawLen]
}

// ElementText consumes the current element in full, returning its exact
// raw text (interior whitespace preserved), and advances to the token
// following the element.
func (s *Scanner) ElementText() string {
	var b strings.Builder
	for s.nextElementChunk() {
		b.Write(s.ElementChunk())
	}
	return b.String()
}

// ElementTextContext is ElementText observing ctx at input reads.
func (s *Scanner) ElementTextContext(ctx context.Context) string {
	defer s.setContext(ctx)()
	return s.ElementText()
}

func (s *Scanner) nextElementChunk() bool {
	switch s.elem.mode {
	case elemIdle:
		switch s.tok.kind {
		case ListStart, ObjectStart:
			s.elem = elementState{mode: elemTree}
			s.wsAsToken = true
		case String, Number, True, False, Null, Error:
			s.elem = elementState{mode: elemLiteral}
		default:
			return false
		}
	case elemDone:
		s.elem = elementState{}
		return false
	}
	if s.elem.mode == elemLiteral {
		s.elemView = nil
		if s.nextTokenChunk() {
			return true
		}
		s.elem = elementState{}
		s.nextToken()
		return false
	}
	return s.nextTreeChunk()
}

func (s *Scanner) nextTreeChunk() bool {
	b := s.elemBuf[:0]
	emit := func(view []byte) bool {
		s.elemBuf = b
		s.elemView = view
		s.chunkMut = s.mut
		return true
	}
	for {
		switch s.tok.stage {
		case Start, Interior:
			// An oversized token inside the subtree streams through
			// directly; flush what has accumulated first.
			if len(b) > 0 {
				return emit(b)
			}
			s.elemView = nil
			if s.nextTokenChunk() {
				return true
			}
			continue
		case End:
			s.nextToken()
			continue
		}
		if s.tok.kind == None {
			// Input ended before the subtree closed.
			s.wsAsToken = false
			if len(b) > 0 {
				s.elem.mode = elemDone
				return emit(b)
			}
			s.elem = elementState{}
			return false
		}
		b = append(b, s.src.buf[s.tok.start:s.tok.start+s.tok.raw]...)
		switch s.tok.kind {
		case ListStart, ObjectStart:
			s.elem.depth++
		case ListEnd, ObjectEnd:
			s.elem.depth--
		}
		if s.elem.depth == 0 {
			s.wsAsToken = false
			s.nextToken()
			s.elem.mode = elemDone
			return emit(b)
		}
		s.nextToken()
		if len(b) >= len(s.src.buf) {
			return emit(b)
		}
	}
}
