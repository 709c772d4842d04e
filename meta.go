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

import "fmt"
import "bytes"

/* -------------------------------------------------------------------------- */

// Container for metadata columns attached to a GRanges object. Each
// column has a name and holds one entry per genomic range.
type Meta struct {
  MetaName []string
  MetaData []interface{}
  rows     int
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewMeta(names []string, data []interface{}) Meta {
  meta := Meta{}
  if len(names) != len(data) {
    panic("NewMeta(): invalid parameters!")
  }
  for i := 0; i < len(names); i++ {
    meta.AddMeta(names[i], data[i])
  }
  return meta
}

func (m *Meta) Clone() Meta {
  result := Meta{}
  for i := 0; i < len(m.MetaName); i++ {
    switch v := m.MetaData[i].(type) {
    case []string:
      t := make([]string, len(v)); copy(t, v)
      result.AddMeta(m.MetaName[i], t)
    case []int:
      t := make([]int, len(v)); copy(t, v)
      result.AddMeta(m.MetaName[i], t)
    case []float64:
      t := make([]float64, len(v)); copy(t, v)
      result.AddMeta(m.MetaName[i], t)
    case [][]int:
      t := make([][]int, len(v))
      for j := 0; j < len(v); j++ {
        t[j] = make([]int, len(v[j])); copy(t[j], v[j])
      }
      result.AddMeta(m.MetaName[i], t)
    default:
      panic("Clone(): invalid meta data type!")
    }
  }
  return result
}

/* -------------------------------------------------------------------------- */

// Number of rows (ranges) covered by the metadata columns.
func (m *Meta) Length() int {
  return m.rows
}

// Number of metadata columns.
func (m *Meta) MetaLength() int {
  return len(m.MetaName)
}

func (m *Meta) AddMeta(name string, meta interface{}) {
  n := 0
  switch v := meta.(type) {
  case []string : n = len(v)
  case []int    : n = len(v)
  case []float64: n = len(v)
  case [][]int  : n = len(v)
  default:
    panic("AddMeta(): invalid meta data type!")
  }
  if len(m.MetaName) > 0 && n != m.rows {
    panic("AddMeta(): column has invalid length!")
  }
  // replace column if it already exists
  for i := 0; i < len(m.MetaName); i++ {
    if m.MetaName[i] == name {
      m.MetaData[i] = meta
      return
    }
  }
  m.MetaName = append(m.MetaName, name)
  m.MetaData = append(m.MetaData, meta)
  m.rows     = n
}

func (m *Meta) DeleteMeta(name string) {
  for i := 0; i < len(m.MetaName); i++ {
    if m.MetaName[i] == name {
      m.MetaName = append(m.MetaName[:i], m.MetaName[i+1:]...)
      m.MetaData = append(m.MetaData[:i], m.MetaData[i+1:]...)
      break
    }
  }
  if len(m.MetaName) == 0 {
    m.rows = 0
  }
}

func (m *Meta) GetMeta(name string) interface{} {
  for i := 0; i < len(m.MetaName); i++ {
    if m.MetaName[i] == name {
      return m.MetaData[i]
    }
  }
  return nil
}

func (m *Meta) GetMetaStr(name string) []string {
  if r, ok := m.GetMeta(name).([]string); ok {
    return r
  }
  return []string{}
}

func (m *Meta) GetMetaInt(name string) []int {
  if r, ok := m.GetMeta(name).([]int); ok {
    return r
  }
  return []int{}
}

func (m *Meta) GetMetaFloat(name string) []float64 {
  if r, ok := m.GetMeta(name).([]float64); ok {
    return r
  }
  return []float64{}
}

func (m *Meta) GetMetaIntMatrix(name string) [][]int {
  if r, ok := m.GetMeta(name).([][]int); ok {
    return r
  }
  return [][]int{}
}

/* -------------------------------------------------------------------------- */

func (meta1 *Meta) Append(meta2 Meta) Meta {
  result := Meta{}
  for i := 0; i < len(meta1.MetaName); i++ {
    name := meta1.MetaName[i]
    dat2 := meta2.GetMeta(name)
    if dat2 == nil {
      continue
    }
    switch v1 := meta1.MetaData[i].(type) {
    case []string:
      result.AddMeta(name, append(append([]string{}, v1...), dat2.([]string)...))
    case []int:
      result.AddMeta(name, append(append([]int{}, v1...), dat2.([]int)...))
    case []float64:
      result.AddMeta(name, append(append([]float64{}, v1...), dat2.([]float64)...))
    case [][]int:
      result.AddMeta(name, append(append([][]int{}, v1...), dat2.([][]int)...))
    }
  }
  return result
}

func (meta *Meta) Subset(indices []int) Meta {
  result := Meta{}
  for i := 0; i < len(meta.MetaName); i++ {
    switch v := meta.MetaData[i].(type) {
    case []string:
      t := make([]string, len(indices))
      for j, k := range indices {
        t[j] = v[k]
      }
      result.AddMeta(meta.MetaName[i], t)
    case []int:
      t := make([]int, len(indices))
      for j, k := range indices {
        t[j] = v[k]
      }
      result.AddMeta(meta.MetaName[i], t)
    case []float64:
      t := make([]float64, len(indices))
      for j, k := range indices {
        t[j] = v[k]
      }
      result.AddMeta(meta.MetaName[i], t)
    case [][]int:
      t := make([][]int, len(indices))
      for j, k := range indices {
        t[j] = v[k]
      }
      result.AddMeta(meta.MetaName[i], t)
    }
  }
  return result
}

func (meta *Meta) Slice(ifrom, ito int) Meta {
  indices := make([]int, ito-ifrom)
  for i := ifrom; i < ito; i++ {
    indices[i-ifrom] = i
  }
  return meta.Subset(indices)
}

/* convert to string
 * -------------------------------------------------------------------------- */

func (meta *Meta) String() string {
  var buffer bytes.Buffer

  for i := 0; i < len(meta.MetaName); i++ {
    if i != 0 {
      buffer.WriteString(" ")
    }
    buffer.WriteString(fmt.Sprintf("%s[%d]", meta.MetaName[i], meta.rows))
  }
  return buffer.String()
}
