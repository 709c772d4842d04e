/* Copyright (C) 2017 Philipp Benner
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

import "sort"

/* -------------------------------------------------------------------------- */

type grangesSort struct {
  g       GRanges
  indices []int
}

func newGRangesSort(g GRanges) grangesSort {
  indices := make([]int, g.Length())
  for i := 0; i < len(indices); i++ {
    indices[i] = i
  }
  return grangesSort{g, indices}
}

func (r grangesSort) Len() int {
  return len(r.indices)
}

func (r grangesSort) Less(i, j int) bool {
  i = r.indices[i]
  j = r.indices[j]
  if r.g.Seqnames[i] != r.g.Seqnames[j] {
    return r.g.Seqnames[i] < r.g.Seqnames[j]
  }
  if r.g.Ranges[i].From != r.g.Ranges[j].From {
    return r.g.Ranges[i].From < r.g.Ranges[j].From
  }
  return r.g.Ranges[i].To < r.g.Ranges[j].To
}

func (r grangesSort) Swap(i, j int) {
  r.indices[i], r.indices[j] = r.indices[j], r.indices[i]
}

/* -------------------------------------------------------------------------- */

// Sort the collection by sequence name (ascending byte order) and
// start position. This is the order required by the bigBed writer.
func (g *GRanges) Sort() GRanges {
  s := newGRangesSort(*g)
  sort.Stable(s)
  return g.Subset(s.indices)
}

// IsSorted returns true if the collection is already sorted by
// sequence name and start position.
func (g *GRanges) IsSorted() bool {
  s := newGRangesSort(*g)
  return sort.IsSorted(s)
}
