// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonwire implements stateless helpers for decoding JSON text.
package jsonwire

import "unicode/utf8"

// StringStatus reports why DecodeString stopped.
type StringStatus int

const (
	// StringComplete indicates the closing quote was consumed.
	StringComplete StringStatus = iota
	// StringEnd indicates the input ended inside the string and no more
	// data will arrive; everything decodable was decoded.
	StringEnd
	// StringNeedMore indicates src was exhausted mid-string and more input
	// may arrive. A backslash that would straddle the boundary is left
	// unconsumed so that it starts the next segment.
	StringNeedMore
	// StringDstFull indicates dst has no room for the next decoded unit.
	StringDstFull
)

// DecodeString decodes the interior of a JSON string from src into dst,
// resolving escape sequences. src begins immediately after the opening
// quote, or anywhere inside the interior of a partially decoded string.
// done reports that src holds the final bytes of the input: with done set,
// a truncated \uXXXX escape decodes from however many hex digits are
// present, and an unterminated string completes at the end of src.
//
// A nil dst counts decoded bytes without writing them.
//
// It returns the count of src bytes consumed, the count of decoded bytes
// (written when dst is non-nil), whether any backslash was seen, and the
// reason decoding stopped. Unrecognized escape letters decode to the
// letter itself. Each \uXXXX escape decodes to its code point as a single
// unit; surrogate halves are encoded individually and never recombined.
func DecodeString(src, dst []byte, done bool) (nsrc, ndst int, hasEscapes bool, status StringStatus) {
	i, w := 0, 0
	room := func(n int) bool { return dst == nil || w+n <= len(dst) }
	put := func(b byte) {
		if dst != nil {
			dst[w] = b
		}
		w++
	}
	for i < len(src) {
		c := src[i]
		switch {
		case c == '"':
			return i + 1, w, hasEscapes, StringComplete
		case c == '\\':
			hasEscapes = true
			if i+1 >= len(src) {
				if done {
					return i + 1, w, hasEscapes, StringEnd
				}
				return i, w, hasEscapes, StringNeedMore
			}
			e := src[i+1]
			if e != 'u' {
				if !room(1) {
					return i, w, hasEscapes, StringDstFull
				}
				put(unescapeByte(e))
				i += 2
				continue
			}
			// \uXXXX with up to four hex digits. Consume fewer only once
			// the input is known to be complete.
			var r rune
			n := 0
			for n < 4 && i+2+n < len(src) && isHex(src[i+2+n]) {
				r = r<<4 | rune(hexDigit(src[i+2+n]))
				n++
			}
			if n < 4 && i+2+n >= len(src) && !done {
				return i, w, hasEscapes, StringNeedMore
			}
			if !room(unitLen(r)) {
				return i, w, hasEscapes, StringDstFull
			}
			if dst != nil {
				w += encodeUnit(dst[w:], r)
			} else {
				w += unitLen(r)
			}
			i += 2 + n
		default:
			if !room(1) {
				return i, w, hasEscapes, StringDstFull
			}
			put(c)
			i++
		}
	}
	if done {
		return i, w, hasEscapes, StringEnd
	}
	return i, w, hasEscapes, StringNeedMore
}

func unescapeByte(e byte) byte {
	switch e {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		// '"', '\\', '/', and any unrecognized letter yield themselves.
		return e
	}
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func hexDigit(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c >= 'a':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// encodeUnit encodes one decoded code unit into dst and returns its size.
// Unpaired surrogate halves are encoded with the generic three-byte
// pattern rather than being replaced, so that the decoded text preserves
// exactly the units the escapes named.
func encodeUnit(dst []byte, r rune) int {
	if utf8.ValidRune(r) {
		return utf8.EncodeRune(dst, r)
	}
	dst[0] = 0xe0 | byte(r>>12)
	dst[1] = 0x80 | byte(r>>6)&0x3f
	dst[2] = 0x80 | byte(r)&0x3f
	return 3
}

func unitLen(r rune) int {
	if utf8.ValidRune(r) {
		return utf8.RuneLen(r)
	}
	return 3
}
