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

import "bufio"
import "bytes"
import "fmt"
import "compress/gzip"
import "io"
import "os"
import "strconv"
import "strings"

/* write bed files
 * -------------------------------------------------------------------------- */

func (granges GRanges) writeBed(w io.Writer, columns int) error {

  name        := granges.GetMetaStr      ("name")
  score       := granges.GetMetaInt      ("score")
  thickStart  := granges.GetMetaInt      ("thickStart")
  thickEnd    := granges.GetMetaInt      ("thickEnd")
  itemRgb     := granges.GetMetaStr      ("itemRgb")
  blockCount  := granges.GetMetaInt      ("blockCount")
  blockSizes  := granges.GetMetaIntMatrix("blockSizes")
  blockStarts := granges.GetMetaIntMatrix("blockStarts")

  for i := 0; i < granges.Length(); i++ {
    fmt.Fprintf(w,   "%s", granges.Seqnames[i])
    fmt.Fprintf(w, "\t%d", granges.Ranges[i].From)
    fmt.Fprintf(w, "\t%d", granges.Ranges[i].To)
    if columns >= 4 {
      if len(name) > 0 {
        fmt.Fprintf(w, "\t%s", name[i])
      } else {
        fmt.Fprintf(w, "\t%s", ".")
      }
    }
    if columns >= 5 {
      if len(score) > 0 {
        fmt.Fprintf(w, "\t%d", score[i])
      } else {
        fmt.Fprintf(w, "\t%d", 0)
      }
    }
    if columns >= 6 {
      if granges.Strand[i] != '*' {
        fmt.Fprintf(w, "\t%c", granges.Strand[i])
      } else {
        fmt.Fprintf(w, "\t%s", ".")
      }
    }
    if columns >= 8 {
      if len(thickStart) > 0 {
        fmt.Fprintf(w, "\t%d", thickStart[i])
      } else {
        fmt.Fprintf(w, "\t%d", granges.Ranges[i].From)
      }
      if len(thickEnd) > 0 {
        fmt.Fprintf(w, "\t%d", thickEnd[i])
      } else {
        fmt.Fprintf(w, "\t%d", granges.Ranges[i].To)
      }
    }
    if columns >= 9 {
      if len(itemRgb) > 0 {
        fmt.Fprintf(w, "\t%s", itemRgb[i])
      } else {
        fmt.Fprintf(w, "\t%s", "0,0,0")
      }
    }
    if columns >= 12 {
      if len(blockCount) > 0 {
        fmt.Fprintf(w, "\t%d", blockCount[i])
      } else {
        fmt.Fprintf(w, "\t%d", 0)
      }
      if len(blockSizes) > 0 {
        fmt.Fprintf(w, "\t%s", intListString(blockSizes[i]))
      } else {
        fmt.Fprintf(w, "\t%s", "")
      }
      if len(blockStarts) > 0 {
        fmt.Fprintf(w, "\t%s", intListString(blockStarts[i]))
      } else {
        fmt.Fprintf(w, "\t%s", "")
      }
    }
    fmt.Fprintf(w, "\n")
  }
  return nil
}

// Export GRanges object as bed file with three columns.
func (granges GRanges) WriteBed3(filename string, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  granges.writeBed(w, 3)
  w.Flush()

  return writeFile(filename, &buffer, compress)
}

func (granges GRanges) WriteBed6(filename string, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  granges.writeBed(w, 6)
  w.Flush()

  return writeFile(filename, &buffer, compress)
}

func (granges GRanges) WriteBed9(filename string, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  granges.writeBed(w, 9)
  w.Flush()

  return writeFile(filename, &buffer, compress)
}

func (granges GRanges) WriteBed12(filename string, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  granges.writeBed(w, 12)
  w.Flush()

  return writeFile(filename, &buffer, compress)
}

// Write the collection as bed text to the given writer. The number
// of columns is determined by the metadata columns present.
func (granges GRanges) WriteBed(w io.Writer) error {
  columns := 3
  switch granges.bigBedOptFields() {
  case 1: columns =  4
  case 2: columns =  5
  case 3: columns =  6
  case 4: columns =  8
  case 5: columns =  8
  case 6: columns =  9
  case 7: columns = 12
  case 8: columns = 12
  case 9: columns = 12
  }
  return granges.writeBed(w, columns)
}

/* read bed files
 * -------------------------------------------------------------------------- */

func (g *GRanges) readBed(scanner *bufio.Scanner, columns int) error {
  seqnames    := []string{}
  from        := []int{}
  to          := []int{}
  name        := []string{}
  score       := []int{}
  strand      := []byte{}
  thickStart  := []int{}
  thickEnd    := []int{}
  itemRgb     := []string{}
  blockCount  := []int{}
  blockSizes  := [][]int{}
  blockStarts := [][]int{}

  for scanner.Scan() {
    fields := strings.Split(scanner.Text(), "\t")
    if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
      continue
    }
    if len(fields) < columns {
      return fmt.Errorf("bed file must have at least %d columns", columns)
    }
    t1, err := strconv.ParseInt(fields[1], 10, 64)
    if err != nil {
      return err
    }
    t2, err := strconv.ParseInt(fields[2], 10, 64)
    if err != nil {
      return err
    }
    seqnames = append(seqnames, fields[0])
    from     = append(from,     int(t1))
    to       = append(to,       int(t2))
    if columns >= 4 {
      name = append(name, fields[3])
    }
    if columns >= 5 {
      t3, err := strconv.ParseInt(fields[4], 10, 64)
      if err != nil {
        return err
      }
      score = append(score, int(t3))
    }
    if columns >= 6 {
      if fields[5][0] == '.' {
        strand = append(strand, '*')
      } else {
        strand = append(strand, fields[5][0])
      }
    }
    if columns >= 8 {
      t4, err := strconv.ParseInt(fields[6], 10, 64)
      if err != nil {
        return err
      }
      t5, err := strconv.ParseInt(fields[7], 10, 64)
      if err != nil {
        return err
      }
      thickStart = append(thickStart, int(t4))
      thickEnd   = append(thickEnd,   int(t5))
    }
    if columns >= 9 {
      itemRgb = append(itemRgb, fields[8])
    }
    if columns >= 12 {
      t6, err := strconv.ParseInt(fields[9], 10, 64)
      if err != nil {
        return err
      }
      sizes, err := parseBedIntList(fields[10])
      if err != nil {
        return err
      }
      starts, err := parseBedIntList(fields[11])
      if err != nil {
        return err
      }
      blockCount  = append(blockCount,  int(t6))
      blockSizes  = append(blockSizes,  sizes)
      blockStarts = append(blockStarts, starts)
    }
  }
  *g = NewGRanges(seqnames, from, to, strand)
  if columns >=  4 {
    g.AddMeta("name", name)
  }
  if columns >=  5 {
    g.AddMeta("score", score)
  }
  if columns >=  8 {
    g.AddMeta("thickStart", thickStart)
    g.AddMeta("thickEnd",   thickEnd)
  }
  if columns >=  9 {
    g.AddMeta("itemRgb", itemRgb)
  }
  if columns >= 12 {
    g.AddMeta("blockCount",  blockCount)
    g.AddMeta("blockSizes",  blockSizes)
    g.AddMeta("blockStarts", blockStarts)
  }
  return nil
}

func (g *GRanges) readBedFile(filename string, columns int) error {
  var scanner *bufio.Scanner
  // open file
  f, err := os.Open(filename)
  if err != nil {
    return err
  }
  defer f.Close()
  // check if file is gzipped
  if isGzip(filename) {
    z, err := gzip.NewReader(f)
    if err != nil {
      return err
    }
    defer z.Close()
    scanner = bufio.NewScanner(z)
  } else {
    scanner = bufio.NewScanner(f)
  }
  return g.readBed(scanner, columns)
}

// Import GRanges from a bed file with 3 columns.
func (g *GRanges) ReadBed3(filename string) error {
  return g.readBedFile(filename, 3)
}

// Import GRanges from a bed file with 6 columns.
func (g *GRanges) ReadBed6(filename string) error {
  return g.readBedFile(filename, 6)
}

// Import GRanges from a bed file with 9 columns.
func (g *GRanges) ReadBed9(filename string) error {
  return g.readBedFile(filename, 9)
}

// Import GRanges from a bed file with 12 columns.
func (g *GRanges) ReadBed12(filename string) error {
  return g.readBedFile(filename, 12)
}
