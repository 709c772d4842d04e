/* Copyright (C) 2016 Philipp Benner
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package bigbed

/* -------------------------------------------------------------------------- */

import "bytes"
import "fmt"
import "sort"

/* -------------------------------------------------------------------------- */

// Collection of named genomic ranges with optional metadata columns.
// Ranges are 0-based half-open intervals.
type GRanges struct {
  Seqnames []string
  Ranges   []Range
  Strand   []byte
  Meta
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewGRanges(seqnames []string, from, to []int, strand []byte) GRanges {
  n := len(seqnames)
  if len(  from) != n || len(    to) != n ||
    (len(strand) != 0 && len(strand) != n) {
    panic("NewGRanges(): invalid arguments!")
  }
  if len(strand) == 0 {
    strand = make([]byte, n)
    for i := 0; i < n; i++ {
      strand[i] = '*'
    }
  }
  ranges := make([]Range, n)
  for i := 0; i < n; i++ {
    // create range
    ranges[i] = NewRange(from[i], to[i])
    // check if strand is valid; '.' is accepted as a synonym for '*'
    switch strand[i] {
    case '+', '-', '*', '?':
    case '.':
      strand[i] = '*'
    default:
      panic("NewGRanges(): invalid strand!")
    }
  }
  return GRanges{seqnames, ranges, strand, Meta{}}
}

func NewEmptyGRanges(n int) GRanges {
  seqnames := make([]string, n)
  ranges   := make([]Range, n)
  strand   := make([]byte, n)
  for i := 0; i < n; i++ {
    strand[i] = '*'
  }
  return GRanges{seqnames, ranges, strand, Meta{}}
}

func (r *GRanges) Clone() GRanges {
  result := GRanges{}
  n := r.Length()
  result.Seqnames = make([]string, n)
  result.Ranges   = make([]Range, n)
  result.Strand   = make([]byte, n)
  copy(result.Seqnames, r.Seqnames)
  copy(result.Ranges,   r.Ranges)
  copy(result.Strand,   r.Strand)
  result.Meta = r.Meta.Clone()
  return result
}

/* -------------------------------------------------------------------------- */

func (r *GRanges) Length() int {
  return len(r.Ranges)
}

func (r1 *GRanges) Append(r2 GRanges) GRanges {
  result := GRanges{}

  result.Seqnames = append(append([]string{}, r1.Seqnames...), r2.Seqnames...)
  result.Ranges   = append(append([]Range {}, r1.Ranges  ...), r2.Ranges  ...)
  result.Strand   = append(append([]byte  {}, r1.Strand  ...), r2.Strand  ...)

  result.Meta = r1.Meta.Append(r2.Meta)

  return result
}

func (r *GRanges) Subset(indices []int) GRanges {
  n := len(indices)
  seqnames := make([]string, n)
  from     := make([]int, n)
  to       := make([]int, n)
  strand   := make([]byte, n)

  for i := 0; i < n; i++ {
    seqnames[i] = r.Seqnames[indices[i]]
    from    [i] = r.Ranges  [indices[i]].From
    to      [i] = r.Ranges  [indices[i]].To
    strand  [i] = r.Strand  [indices[i]]
  }
  result := NewGRanges(seqnames, from, to, strand)
  result.Meta = r.Meta.Subset(indices)

  return result
}

func (r *GRanges) Slice(ifrom, ito int) GRanges {
  indices := make([]int, ito-ifrom)
  for i := ifrom; i < ito; i++ {
    indices[i-ifrom] = i
  }
  return r.Subset(indices)
}

// Seqlevels returns the set of sequence names present in the
// collection, sorted in ascending byte order.
func (r *GRanges) Seqlevels() []string {
  m := map[string]bool{}
  for _, name := range r.Seqnames {
    m[name] = true
  }
  result := []string{}
  for name, _ := range m {
    result = append(result, name)
  }
  sort.Strings(result)
  return result
}

/* convert to string
 * -------------------------------------------------------------------------- */

func (r GRanges) String() string {
  var buffer bytes.Buffer

  buffer.WriteString(
    fmt.Sprintf("%14s %12s %12s %7s\n", "seqnames", "from", "to", "strand"))

  for i := 0; i < r.Length(); i++ {
    buffer.WriteString(
      fmt.Sprintf("%14s %12d %12d %7c\n",
        r.Seqnames[i],
        r.Ranges  [i].From,
        r.Ranges  [i].To,
        r.Strand  [i]))
  }
  if r.MetaLength() > 0 {
    buffer.WriteString(fmt.Sprintf("meta: %s\n", r.Meta.String()))
  }
  return buffer.String()
}
