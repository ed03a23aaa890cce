// Copyright 2026 The xdeps Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ref

import (
	"fmt"
	"hash/fnv"
)

// structuralHash combines a tag identifying the node kind/operator with its
// children's hashes, giving pure-value refs (UnOp/BinOp/Builtin/Call) a
// structural identity: two independently built but structurally equal
// trees hash the same, since pure-value references are value-objects.
func structuralHash(tag string, parts ...uint64) uint64 {
	h := fnv.New64a()
	h.Write([]byte(tag))
	buf := make([]byte, 8)
	for _, p := range parts {
		for i := 0; i < 8; i++ {
			buf[i] = byte(p >> (8 * i))
		}
		h.Write(buf)
	}
	return h.Sum64()
}

func hashAny(v any) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%T:%v", v, v)
	return h.Sum64()
}
