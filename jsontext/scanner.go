// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsontext

import (
	"context"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-jsondata/jsondata/internal/jsonwire"
)

// ScannerOptions configures a Scanner.
// The zero value is equivalent to the default settings.
type ScannerOptions struct {
	// BufferSize is the initial size of the working buffer.
	// It defaults to 4096 and has a floor of 16.
	BufferSize int
}

// Scanner is a pull-style tokenizer for a stream of JSON text.
//
// NextToken classifies one token at a time. A token whose text is resident
// in the working buffer is InBuffer and can be taken whole with TokenText
// or TokenValue; a token too large for the buffer is Start and is consumed
// incrementally with NextTokenChunk, whose per-chunk views never exceed the
// working buffer in size.
//
// Methods come in matched plain and Context flavors with identical
// semantics; the Context flavor observes cancellation at the moments the
// scanner reads more input. A Scanner must not be used from multiple
// goroutines simultaneously.
type Scanner struct {
	src source
	ctx context.Context

	tok token

	// Views for the current chunk. raw bytes live at buf[rawOff:rawOff+rawLen];
	// when decoded is set the value view is dec[:decN] instead.
	dec     []byte
	decN    int
	rawOff  int
	rawLen  int
	decoded bool

	// mut counts scanner mutations; chunk views are pinned to the value of
	// mut at which they were produced and fail loudly when reused later.
	mut      uint64
	chunkMut uint64

	wsAsToken bool

	elem     elementState
	elemBuf  []byte
	elemView []byte
}

// token carries the metadata of the current token.
type token struct {
	kind  Kind
	stage Stage
	start int // buffer offset of the token start; meaningful until consumption begins
	raw   int // raw length: total when InBuffer, running while streaming
	dec   int // decoded length; equals raw except for strings with escapes

	hasDecimal  bool
	hasExponent bool
	hasEscapes  bool
}

// NewScanner constructs a Scanner reading from r with default options.
func NewScanner(r io.Reader) *Scanner {
	return ScannerOptions{}.NewScanner(r)
}

// NewScanner constructs a Scanner reading from r.
func (o ScannerOptions) NewScanner(r io.Reader) *Scanner {
	size := o.BufferSize
	if size == 0 {
		size = defaultBufferSize
	}
	if size < minBufferSize {
		size = minBufferSize
	}
	return &Scanner{src: source{rd: r, buf: make([]byte, size)}}
}

// Kind returns the kind of the current token,
// None before the first NextToken call and at end of input.
func (s *Scanner) Kind() Kind { return s.tok.kind }

// Stage returns how much of the current token is available.
func (s *Scanner) Stage() Stage { return s.tok.stage }

// HasDecimal reports whether the current number token contains a fraction.
func (s *Scanner) HasDecimal() bool { return s.tok.hasDecimal }

// HasExponent reports whether the current number token contains an exponent.
func (s *Scanner) HasExponent() bool { return s.tok.hasExponent }

// HasEscapes reports whether the current string token contains escapes.
func (s *Scanner) HasEscapes() bool { return s.tok.hasEscapes }

// RawLength returns the raw byte length of the current token: the total
// when the token is InBuffer, or the bytes delivered so far while streaming.
func (s *Scanner) RawLength() int { return s.tok.raw }

// DecodedLength returns the decoded byte length of the current token,
// with the same totality caveat as RawLength.
func (s *Scanner) DecodedLength() int { return s.tok.dec }

// Position returns the absolute input offset of the next unconsumed byte.
// It never decreases.
func (s *Scanner) Position() int64 { return s.src.start + int64(s.src.off) }

// Err returns the first non-EOF error encountered while reading input,
// or the cancellation error if a Context flavor was interrupted.
func (s *Scanner) Err() error { return s.src.err }

// NextToken discards whatever remains of the current token, skips
// whitespace, and classifies the next token, refilling (and rescanning) as
// needed until the token is fully in buffer, occupies the entire buffer and
// must be streamed, or input ends. It reports false at end of input.
func (s *Scanner) NextToken() bool { return s.nextToken() }

// NextTokenContext is NextToken observing ctx at input reads.
func (s *Scanner) NextTokenContext(ctx context.Context) bool {
	defer s.setContext(ctx)()
	return s.nextToken()
}

// NextTokenChunk produces the next chunk of the current token: string
// chunks are decoded into the value buffer, all other kinds yield raw text.
// An InBuffer token is delivered as a single chunk. It reports false once
// the token is exhausted.
func (s *Scanner) NextTokenChunk() bool { return s.nextTokenChunk() }

// NextTokenChunkContext is NextTokenChunk observing ctx at input reads.
func (s *Scanner) NextTokenChunkContext(ctx context.Context) bool {
	defer s.setContext(ctx)()
	return s.nextTokenChunk()
}

func (s *Scanner) setContext(ctx context.Context) func() {
	old := s.ctx
	s.ctx = ctx
	return func() { s.ctx = old }
}

// TextChunk returns the raw text of the current chunk as a view into the
// working buffer, valid only until the next scanner mutation.
func (s *Scanner) TextChunk() []byte {
	s.checkChunk()
	return s.src.buf[s.rawOff : s.rawOff+s.rawLen]
}

// ValueChunk returns the decoded value of the current chunk, valid only
// until the next scanner mutation. Using a stale view panics.
func (s *Scanner) ValueChunk() []byte {
	s.checkChunk()
	if s.decoded {
		return s.dec[:s.decN]
	}
	return s.src.buf[s.rawOff : s.rawOff+s.rawLen]
}

func (s *Scanner) checkChunk() {
	if s.chunkMut != s.mut {
		panic("jsontext: token chunk used after the scanner advanced")
	}
}

// TokenText returns the raw text of the current token when it is fully in
// buffer. It does not consume the token.
func (s *Scanner) TokenText() (string, bool) {
	if s.tok.stage != InBuffer {
		return "", false
	}
	return string(s.src.buf[s.tok.start : s.tok.start+s.tok.raw]), true
}

// TokenRaw returns the raw text of the current token as a borrowed view
// into the working buffer when the token is fully in buffer, valid only
// until the next scanner mutation. It does not consume the token.
func (s *Scanner) TokenRaw() ([]byte, bool) {
	if s.tok.stage != InBuffer {
		return nil, false
	}
	return s.src.buf[s.tok.start : s.tok.start+s.tok.raw], true
}

// SetContext installs ctx to be observed whenever the scanner reads more
// input, until replaced. A nil ctx restores uninterruptible reads.
func (s *Scanner) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// TokenValue returns the decoded value of the current token when it is
// fully in buffer: the unescaped interior for strings, the raw text for
// everything else. It does not consume the token.
func (s *Scanner) TokenValue() (string, bool) {
	if s.tok.stage != InBuffer {
		return "", false
	}
	if s.tok.kind != String {
		return string(s.src.buf[s.tok.start : s.tok.start+s.tok.raw]), true
	}
	interior := s.src.buf[s.tok.start+1 : s.tok.start+s.tok.raw]
	dst := make([]byte, s.tok.dec)
	_, n, _, _ := jsonwire.DecodeString(interior, dst, true)
	return string(dst[:n]), true
}

// ReadText consumes the current token in full, returning its raw text, and
// advances to the next token.
func (s *Scanner) ReadText() string {
	if t, ok := s.TokenText(); ok {
		s.nextToken()
		return t
	}
	var b strings.Builder
	for s.nextTokenChunk() {
		b.Write(s.TextChunk())
	}
	s.nextToken()
	return b.String()
}

// ReadValue consumes the current token in full, returning its decoded
// value, and advances to the next token.
func (s *Scanner) ReadValue() string {
	if v, ok := s.TokenValue(); ok {
		s.nextToken()
		return v
	}
	var b strings.Builder
	for s.nextTokenChunk() {
		b.Write(s.ValueChunk())
	}
	s.nextToken()
	return b.String()
}

// ReadTextContext is ReadText observing ctx at input reads.
func (s *Scanner) ReadTextContext(ctx context.Context) string {
	defer s.setContext(ctx)()
	return s.ReadText()
}

// ReadValueContext is ReadValue observing ctx at input reads.
func (s *Scanner) ReadValueContext(ctx context.Context) string {
	defer s.setContext(ctx)()
	return s.ReadValue()
}

// SkipElement advances past the current token; when the token opens a list
// or object, it advances until the matching close has been consumed. It
// reports false when no token follows, either because input ended inside
// the element or because the element was the last one in the input.
func (s *Scanner) SkipElement() bool {
	if k := s.tok.kind; k != ListStart && k != ObjectStart {
		return s.nextToken()
	}
	depth := 0
	for {
		switch s.tok.kind {
		case ListStart, ObjectStart:
			depth++
		case ListEnd, ObjectEnd:
			depth--
		}
		ok := s.nextToken()
		if depth == 0 {
			return ok
		}
		if !ok {
			return false
		}
	}
}

// SkipElementContext is SkipElement observing ctx at input reads.
func (s *Scanner) SkipElementContext(ctx context.Context) bool {
	defer s.setContext(ctx)()
	return s.SkipElement()
}

// PeekKind classifies the index-th token after the current one without
// consuming anything, provided it fits in the buffer; otherwise the buffer
// is refilled once and Unknown is returned if still indeterminate.
// PeekKind() is equivalent to PeekKind(0): the immediately following token.
func (s *Scanner) PeekKind(index ...int) Kind {
	k := 0
	if len(index) > 0 {
		k = index[0]
	}
	switch s.tok.stage {
	case Start, Interior:
		return Unknown // cannot see past a token that is still streaming
	}
	cursor := s.src.off
	if s.tok.stage == InBuffer {
		cursor += s.tok.raw
	}
	refilled := false
	refill := func() bool {
		if refilled {
			return false
		}
		refilled = true
		s.mut++ // compaction moves the buffer under any outstanding views
		return s.src.fill(s.ctx, false, &s.tok.start, &cursor)
	}
	for {
		off, needMore := s.skipWSFrom(cursor)
		cursor = off
		if needMore {
			if !refill() && !s.src.done {
				return Unknown
			}
			continue
		}
		if cursor == s.src.n {
			if s.src.done {
				return None
			}
			if refill() || s.src.done {
				continue
			}
			return Unknown
		}
		tok, status := s.classify(cursor)
		switch status {
		case scanComplete:
			if k == 0 {
				return tok.kind
			}
			k--
			cursor += tok.raw
		case scanPartial:
			if k == 0 {
				return tok.kind
			}
			return Unknown // cannot size a token that exceeds the buffer
		default: // scanMore
			if refill() || s.src.done {
				continue
			}
			return Unknown
		}
	}
}

// nextToken is the shared state machine behind NextToken and its Context
// flavor; the fill primitive observes s.ctx when one is installed.
func (s *Scanner) nextToken() bool {
	s.mut++
	switch s.tok.stage {
	case InBuffer:
		s.src.advance(s.tok.raw)
	case Start, Interior:
		for s.nextTokenChunk() {
		}
	}
	s.tok = token{}
	s.rawLen, s.decN, s.decoded = 0, 0, false

	// Skip whitespace, or surface it as a token in whitespace-as-token
	// mode. A run reaching the end of the buffer is delivered as
	// consecutive whitespace tokens, which keeps reconstructed element
	// text faithful without ever chunking whitespace.
	for {
		off, needMore := s.skipWSFrom(s.src.off)
		if s.wsAsToken && off > s.src.off {
			s.tok = token{kind: Whitespace, stage: InBuffer, start: s.src.off, raw: off - s.src.off, dec: off - s.src.off}
			return true
		}
		s.src.advance(off - s.src.off)
		if needMore || s.src.avail() == 0 {
			if s.src.done {
				if s.src.avail() == 0 {
					s.tok = token{kind: None, stage: Unread}
					return false
				}
				break // a trailing partial rune; classify will report it
			}
			s.src.fill(s.ctx, false)
			continue
		}
		break
	}

	// Classify the token at the current offset, refilling and rescanning
	// until it is fully in buffer, occupies the entire buffer and must be
	// streamed, or input ends.
	for {
		tok, status := s.classify(s.src.off)
		tok.start = s.src.off
		switch status {
		case scanComplete:
			tok.stage = InBuffer
			s.tok = tok
			return true
		case scanPartial:
			if s.src.off == 0 && s.src.n == len(s.src.buf) {
				tok.stage = Start
				tok.raw, tok.dec = 0, 0
				s.tok = tok
				return true
			}
			s.src.fill(s.ctx, false)
		case scanMore:
			// Not even the kind is decidable. Growing here keeps the
			// contract that callers always get at least a Start stage.
			grow := s.src.off == 0 && s.src.n == len(s.src.buf)
			s.src.fill(s.ctx, grow)
		}
	}
}

// skipWSFrom walks over whitespace starting at off and returns the offset
// of the first non-whitespace byte. needMore reports that the answer could
// change with more buffered data (the run reached the end of the buffer,
// or a rune is split across it).
func (s *Scanner) skipWSFrom(off int) (_ int, needMore bool) {
	for off < s.src.n {
		c := s.src.buf[off]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			off++
			continue
		}
		if c < utf8.RuneSelf {
			return off, false
		}
		r, size := utf8.DecodeRune(s.src.buf[off:s.src.n])
		if r == utf8.RuneError && size == 1 && !s.src.done && s.src.n-off < utf8.UTFMax {
			return off, true
		}
		if !unicode.IsSpace(r) {
			return off, false
		}
		off += size
	}
	return off, !s.src.done
}

type scanStatus int

const (
	scanComplete scanStatus = iota // the whole token is buffered; metadata is final
	scanPartial                    // the kind is known but the token continues past the buffered data
	scanMore                       // the buffered data cannot classify the token
)

// classify scans the token beginning at off without consuming anything.
func (s *Scanner) classify(off int) (token, scanStatus) {
	switch c := s.src.buf[off]; {
	case c == '[' || c == ']' || c == '{' || c == '}' || c == ',' || c == ':':
		return token{kind: Kind(c), raw: 1, dec: 1}, scanComplete
	case c == '"':
		return s.classifyString(off)
	case c == '-' || ('0' <= c && c <= '9'):
		return s.classifyNumber(off)
	case isASCIILetter(c):
		return s.classifyWord(off)
	default:
		r, size := utf8.DecodeRune(s.src.buf[off:s.src.n])
		if r == utf8.RuneError && size == 1 && !s.src.done && s.src.n-off < utf8.UTFMax {
			return token{kind: Unknown}, scanMore
		}
		return token{kind: Error, raw: size, dec: size}, scanComplete
	}
}

func (s *Scanner) classifyString(off int) (token, scanStatus) {
	interior := s.src.buf[off+1 : s.src.n]
	nsrc, ndst, esc, status := jsonwire.DecodeString(interior, nil, s.src.done)
	switch status {
	case jsonwire.StringComplete, jsonwire.StringEnd:
		return token{kind: String, raw: 1 + nsrc, dec: ndst, hasEscapes: esc}, scanComplete
	default:
		return token{kind: String, hasEscapes: esc}, scanPartial
	}
}

func (s *Scanner) classifyNumber(off int) (token, scanStatus) {
	tok := token{kind: Number}
	i := off
	if s.src.buf[i] == '-' {
		i++
	}
	digits := func() (seen bool) {
		for i < s.src.n && '0' <= s.src.buf[i] && s.src.buf[i] <= '9' {
			i++
			seen = true
		}
		return seen
	}
	boundary := func() (token, scanStatus) {
		// The follower is not visible, so completeness is unknowable.
		if s.src.done {
			tok.raw, tok.dec = i-off, i-off
			return tok, scanComplete
		}
		return tok, scanPartial
	}
	if !digits() {
		if i == s.src.n {
			return boundary()
		}
		return token{kind: Error, raw: i - off + 1, dec: i - off + 1}, scanComplete
	}
	if i < s.src.n && s.src.buf[i] == '.' {
		tok.hasDecimal = true
		i++
		digits()
	}
	if i == s.src.n {
		return boundary()
	}
	if c := s.src.buf[i]; c == 'e' || c == 'E' {
		tok.hasExponent = true
		i++
		if i < s.src.n && (s.src.buf[i] == '+' || s.src.buf[i] == '-') {
			i++
		}
		digits()
		if i == s.src.n {
			return boundary()
		}
	}
	tok.raw, tok.dec = i-off, i-off
	return tok, scanComplete
}

func (s *Scanner) classifyWord(off int) (token, scanStatus) {
	i := off
	for i < s.src.n && isASCIILetter(s.src.buf[i]) {
		i++
	}
	word := s.src.buf[off:i]
	if i == s.src.n && !s.src.done {
		// The run may continue. A run still short enough to be a keyword
		// needs more data; a longer one is already an error run and can
		// stream as such.
		if len(word) <= len("false") && isKeywordPrefix(word) {
			return token{kind: Unknown}, scanMore
		}
		return token{kind: Error}, scanPartial
	}
	tok := token{raw: len(word), dec: len(word)}
	switch string(word) {
	case "true":
		tok.kind = True
	case "false":
		tok.kind = False
	case "null":
		tok.kind = Null
	default:
		tok.kind = Error
	}
	return tok, scanComplete
}

func isKeywordPrefix(word []byte) bool {
	for _, kw := range []string{"true", "false", "null"} {
		if len(word) <= len(kw) && string(word) == kw[:len(word)] {
			return true
		}
	}
	return false
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// nextTokenChunk is the shared state machine behind NextTokenChunk and its
// Context flavor.
func (s *Scanner) nextTokenChunk() bool {
	s.mut++
	s.rawLen, s.decN, s.decoded = 0, 0, false
	switch s.tok.stage {
	case InBuffer:
		s.rawOff, s.rawLen = s.tok.start, s.tok.raw
		if s.tok.kind == String {
			s.decodeWhole()
		}
		s.src.advance(s.tok.raw)
		s.tok.stage = End
		s.chunkMut = s.mut
		return true
	case Start, Interior:
		if s.tok.kind == String {
			return s.streamStringChunk()
		}
		return s.streamRawChunk()
	default:
		return false
	}
}

// decodeWhole decodes the interior of a fully buffered string token into
// the value buffer.
func (s *Scanner) decodeWhole() {
	interior := s.src.buf[s.tok.start+1 : s.tok.start+s.tok.raw]
	if cap(s.dec) < len(interior) {
		s.dec = make([]byte, max(len(interior), len(s.src.buf)))
	}
	_, n, _, _ := jsonwire.DecodeString(interior, s.dec[:cap(s.dec)], true)
	s.dec = s.dec[:cap(s.dec)]
	s.decN = n
	s.decoded = true
}

// streamStringChunk decodes the next bounded chunk of a streaming string.
// The first chunk accounts for the opening quote in its raw length; the
// final chunk consumes the closing quote. An escape that would straddle
// the buffer boundary is deferred so that the unread backslash starts the
// next chunk.
func (s *Scanner) streamStringChunk() bool {
	skip := 0
	if s.tok.stage == Start {
		skip = 1 // opening quote
	}
	if s.dec == nil {
		s.dec = make([]byte, len(s.src.buf))
	}
	for {
		src := s.src.buf[s.src.off+skip : s.src.n]
		nsrc, ndst, esc, status := jsonwire.DecodeString(src, s.dec, s.src.done)
		if ndst == 0 && status == jsonwire.StringNeedMore && nsrc == 0 {
			if !s.src.fill(s.ctx, false) && !s.src.done {
				return false // input failed; error latched in Err
			}
			continue
		}
		consumed := skip + nsrc
		s.rawOff, s.rawLen = s.src.off, consumed
		s.decN, s.decoded = ndst, true
		s.tok.raw += consumed
		s.tok.dec += ndst
		s.tok.hasEscapes = s.tok.hasEscapes || esc
		s.src.advance(consumed)
		if status == jsonwire.StringComplete || status == jsonwire.StringEnd {
			s.tok.stage = End
		} else {
			s.tok.stage = Interior
		}
		s.chunkMut = s.mut
		return true
	}
}

// streamRawChunk emits the next raw chunk of a streaming number, keyword,
// or error run.
func (s *Scanner) streamRawChunk() bool {
	for {
		i := s.src.off
		for i < s.src.n && s.continuesToken(s.src.buf[i]) {
			i++
		}
		atEnd := i == s.src.n
		if i > s.src.off {
			s.rawOff, s.rawLen = s.src.off, i-s.src.off
			s.tok.raw += i - s.src.off
			s.tok.dec += i - s.src.off
			s.src.advance(i - s.src.off)
			if atEnd && !s.src.done {
				s.tok.stage = Interior
			} else {
				s.tok.stage = End
			}
			s.chunkMut = s.mut
			return true
		}
		if !atEnd || s.src.done {
			s.tok.stage = End
			return false
		}
		if !s.src.fill(s.ctx, false) && !s.src.done {
			return false
		}
	}
}

// continuesToken reports whether c extends the streaming token, updating
// the number shape flags as a side effect.
func (s *Scanner) continuesToken(c byte) bool {
	switch s.tok.kind {
	case Number:
		switch {
		case '0' <= c && c <= '9' || c == '-' || c == '+':
			return true
		case c == '.':
			s.tok.hasDecimal = true
			return true
		case c == 'e' || c == 'E':
			s.tok.hasExponent = true
			return true
		}
		return false
	default: // keywords and error runs
		return isASCIILetter(c)
	}
}
