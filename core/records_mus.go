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

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// IDMUS serializes IDs as unsigned varints.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// MatrixStatisticsMUS serializes MatrixStatistics field by field in
// declaration order.
var MatrixStatisticsMUS = matrixStatisticsMUS{}

type matrixStatisticsMUS struct{}

func (s matrixStatisticsMUS) fields(v *MatrixStatistics) []*int {
	return []*int{
		&v.TotalRequirements,
		&v.MappedRequirements,
		&v.UnmappedRequirements,
		&v.CoveragePercent,
		&v.UniqueWorkProducts,
	}
}

func (s matrixStatisticsMUS) Marshal(v MatrixStatistics, bs []byte) (n int) {
	for _, f := range s.fields(&v) {
		n += varint.Int.Marshal(*f, bs[n:])
	}
	return
}

func (s matrixStatisticsMUS) Unmarshal(bs []byte) (v MatrixStatistics, n int, err error) {
	var n1 int
	for _, f := range s.fields(&v) {
		*f, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s matrixStatisticsMUS) Size(v MatrixStatistics) (size int) {
	for _, f := range s.fields(&v) {
		size += varint.Int.Size(*f)
	}
	return
}

func (s matrixStatisticsMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for range 5 {
		n1, err = varint.Int.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// MatrixResultMUS serializes MatrixResult values for the export cache.
var MatrixResultMUS = matrixResultMUS{}

type matrixResultMUS struct{}

func (matrixResultMUS) Marshal(v MatrixResult, bs []byte) (n int) {
	n = ord.String.Marshal(v.Format, bs)
	n += ord.String.Marshal(v.Content, bs[n:])
	return n + MatrixStatisticsMUS.Marshal(v.Statistics, bs[n:])
}

func (matrixResultMUS) Unmarshal(bs []byte) (v MatrixResult, n int, err error) {
	v.Format, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Statistics, n1, err = MatrixStatisticsMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (matrixResultMUS) Size(v MatrixResult) (size int) {
	size = ord.String.Size(v.Format)
	size += ord.String.Size(v.Content)
	return size + MatrixStatisticsMUS.Size(v.Statistics)
}

func (matrixResultMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = MatrixStatisticsMUS.Skip(bs[n:])
	n += n1
	return
}
