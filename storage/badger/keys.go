// Copyright 2025 Ansvar Systems
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

package badger

import (
	"bytes"
	"fmt"

	"github.com/ansvar-systems/automcp/core"
	"github.com/ansvar-systems/automcp/storage"
)

// Key prefixes for different data types
const (
	matrixPrefix = "mtx:"
)

// makeMatrixKey generates a key for a cached matrix.
// Format: prefix + varint ID
func makeMatrixKey(id core.ID) []byte {
	return append([]byte(matrixPrefix), storage.MarshalID(id)...)
}

// parseMatrixKey extracts the ID from a key built by makeMatrixKey.
func parseMatrixKey(key []byte) (core.ID, error) {
	rest, ok := bytes.CutPrefix(key, []byte(matrixPrefix))
	if !ok {
		return 0, fmt.Errorf("not a matrix key: %q", key)
	}
	return storage.UnmarshalID(rest)
}
