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

import "sync/atomic"

// handleCounter assigns process-stable integer handles: every mutable ref
// gets one at construction, and it is that handle — never the ref's
// current value — that the manager's index maps key on.
var handleCounter uint64

func nextHandle() uint64 {
	return atomic.AddUint64(&handleCounter, 1)
}
