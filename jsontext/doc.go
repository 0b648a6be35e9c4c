// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsontext is the syntactic layer of jsondata: a pull-style
// scanner that classifies JSON tokens over a bounded sliding buffer.
//
// Token values are consumed either whole, when the token happens to fit
// in the working buffer, or in bounded-size chunks. Chunked delivery is
// what keeps memory flat for arbitrarily long strings: each chunk is
// decoded into a reusable buffer and handed out as a borrowed view that
// is only valid until the scanner moves again.
//
// The scanner is tolerant by design. It classifies lexically invalid
// runs as Error tokens and reports truncated input through token stages
// rather than failures; structural validation beyond the element walker's
// nesting counter is left to callers.
package jsontext
