// Copyright 2023 The JSONData Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsontext

import (
	"encoding/json"
	"reflect"
	"testing"
)

// FuzzCapacityInvariance checks that valid JSON tokenizes to the same
// (kind, value) sequence at the minimum buffer capacity as at the default,
// whether tokens are read whole or reassembled from chunks.
func FuzzCapacityInvariance(f *testing.F) {
	f.Add(`true`)
	f.Add(`{"a":1,"b":[null,false,"x\n"],"c":{"d":1e3}}`)
	f.Add(`"😀 long enough to straddle a tiny buffer"`)
	f.Add(`[0.5, -12345678901234567890, ""]`)
	f.Fuzz(func(t *testing.T, in string) {
		if !json.Valid([]byte(in)) {
			t.Skip()
		}
		want := tokenize(in, 0)
		if got := tokenize(in, minBufferSize); !reflect.DeepEqual(want, got) {
			t.Errorf("tokenize(..., 16) = %v, want %v", got, want)
		}
		if got := tokenizeChunked(in, minBufferSize); !reflect.DeepEqual(want, got) {
			t.Errorf("tokenizeChunked(..., 16) = %v, want %v", got, want)
		}
	})
}
