/* Copyright (C) 2018 Philipp Benner
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
import "io"
import "os"

import "github.com/pbenner/bigbed/lib/bufferedReadSeeker"

/* import bigBed files
 * -------------------------------------------------------------------------- */

// Read all features from a bigBed file into the GRanges object. The
// bed fields name, score, thickStart, thickEnd, itemRgb, blockCount,
// blockSizes and blockStarts are stored as metadata columns if they
// are present in the file.
func (g *GRanges) ReadBigBed(bbr *BigBedReader) error {
  seqnames    := []string{}
  from        := []int{}
  to          := []int{}
  strand      := []byte{}
  name        := []string{}
  score       := []int{}
  thickStart  := []int{}
  thickEnd    := []int{}
  itemRgb     := []string{}
  blockCount  := []int{}
  blockSizes  := [][]int{}
  blockStarts := [][]int{}

  nOpt := 0

  for i := 0; i < bbr.Genome.Length(); i++ {
    seqname := bbr.Genome.Seqnames[i]
    length  := bbr.Genome.Lengths [i]
    for record := range bbr.Query(seqname, 1, length) {
      if record.Error != nil {
        return record.Error
      }
      if record.OptFields > nOpt {
        nOpt = record.OptFields
      }
      seqnames    = append(seqnames,    record.Seqname)
      from        = append(from,        record.First-1)
      to          = append(to,          record.Last)
      strand      = append(strand,      record.Strand)
      name        = append(name,        record.Name)
      score       = append(score,       record.Score)
      thickStart  = append(thickStart,  record.ThickFirst-1)
      thickEnd    = append(thickEnd,    record.ThickLast)
      itemRgb     = append(itemRgb,     record.ItemRgb)
      blockCount  = append(blockCount,  record.BlockCount)
      blockSizes  = append(blockSizes,  record.BlockSizes)
      blockStarts = append(blockStarts, record.BlockStarts)
    }
  }
  *g = NewGRanges(seqnames, from, to, strand)
  if nOpt >= 1 {
    g.AddMeta("name", name)
  }
  if nOpt >= 2 {
    g.AddMeta("score", score)
  }
  if nOpt >= 4 {
    g.AddMeta("thickStart", thickStart)
  }
  if nOpt >= 5 {
    g.AddMeta("thickEnd", thickEnd)
  }
  if nOpt >= 6 {
    g.AddMeta("itemRgb", itemRgb)
  }
  if nOpt >= 7 {
    g.AddMeta("blockCount", blockCount)
  }
  if nOpt >= 8 {
    g.AddMeta("blockSizes", blockSizes)
  }
  if nOpt >= 9 {
    g.AddMeta("blockStarts", blockStarts)
  }
  return nil
}

func (g *GRanges) ImportBigBed(filename string) error {
  f, err := os.Open(filename)
  if err != nil {
    return err
  }
  defer f.Close()

  reader, err := bufferedReadSeeker.New(f, 8192)
  if err != nil {
    return err
  }
  bbr, err := NewBigBedReader(reader)
  if err != nil {
    return fmt.Errorf("importing bigBed file from `%s' failed: %v", filename, err)
  }
  if err := g.ReadBigBed(bbr); err != nil {
    return fmt.Errorf("importing bigBed file from `%s' failed: %v", filename, err)
  }
  return nil
}

/* export bigBed files
 * -------------------------------------------------------------------------- */

// Number of optional bed fields that can be reconstructed from the
// metadata columns of the GRanges object.
func (g *GRanges) bigBedOptFields() int {
  hasStrand := false
  for i := 0; i < len(g.Strand); i++ {
    if g.Strand[i] != '*' {
      hasStrand = true
      break
    }
  }
  switch {
  case len(g.GetMetaIntMatrix("blockStarts")) > 0:
    return 9
  case len(g.GetMetaIntMatrix("blockSizes")) > 0:
    return 8
  case len(g.GetMetaInt("blockCount")) > 0:
    return 7
  case len(g.GetMetaStr("itemRgb")) > 0:
    return 6
  case len(g.GetMetaInt("thickEnd")) > 0:
    return 5
  case len(g.GetMetaInt("thickStart")) > 0:
    return 4
  case hasStrand:
    return 3
  case len(g.GetMetaInt("score")) > 0:
    return 2
  case len(g.GetMetaStr("name")) > 0:
    return 1
  }
  return 0
}

func (g *GRanges) bigBedEntry(i, nOpt int) BedEntry {
  entry := BedEntry{}
  entry.From      = g.Ranges[i].From
  entry.To        = g.Ranges[i].To
  entry.Strand    = g.Strand[i]
  entry.OptFields = nOpt
  // default values for fields without a metadata column
  entry.ThickFrom = entry.From
  entry.ThickTo   = entry.To
  entry.ItemRgb   = "0,0,0"
  if v := g.GetMetaStr("name"); len(v) > 0 {
    entry.Name = v[i]
  }
  if v := g.GetMetaInt("score"); len(v) > 0 {
    entry.Score = v[i]
  }
  if v := g.GetMetaInt("thickStart"); len(v) > 0 {
    entry.ThickFrom = v[i]
  }
  if v := g.GetMetaInt("thickEnd"); len(v) > 0 {
    entry.ThickTo = v[i]
  }
  if v := g.GetMetaStr("itemRgb"); len(v) > 0 {
    entry.ItemRgb = v[i]
  }
  if v := g.GetMetaInt("blockCount"); len(v) > 0 {
    entry.BlockCount = v[i]
  }
  if v := g.GetMetaIntMatrix("blockSizes"); len(v) > 0 {
    entry.BlockSizes = v[i]
  }
  if v := g.GetMetaIntMatrix("blockStarts"); len(v) > 0 {
    entry.BlockStarts = v[i]
  }
  return entry
}

// Write the GRanges object to a bigBed file. The genome argument
// lists chromosome sizes; sequences missing from the genome are
// added with the maximum end position observed in the data.
// Sequences present in the genome but without features are included
// in the chromosome index and produce no data blocks.
func (granges GRanges) WriteBigBed(writer io.WriteSeeker, genome Genome, parametersArg ...BigBedParameters) error {
  parameters := DefaultBigBedParameters()
  if len(parametersArg) > 0 {
    parameters = parametersArg[0]
  }
  g := granges
  if !g.IsSorted() {
    g = granges.Sort()
  }
  // complete the genome with sequences only present in the data
  genome = NewGenome(
    append([]string{}, genome.Seqnames...),
    append([]int   {}, genome.Lengths ...))
  for i := 0; i < g.Length(); i++ {
    if _, err := genome.GetIdx(g.Seqnames[i]); err != nil {
      maxEnd := 0
      for j := i; j < g.Length() && g.Seqnames[j] == g.Seqnames[i]; j++ {
        if g.Ranges[j].To > maxEnd {
          maxEnd = g.Ranges[j].To
        }
      }
      genome.AddSequence(g.Seqnames[i], maxEnd)
    }
  }
  bbw, err := NewBigBedWriter(writer, genome, parameters)
  if err != nil {
    return err
  }
  nOpt := g.bigBedOptFields()

  for i := 0; i < g.Length(); {
    j := i
    for j < g.Length() && g.Seqnames[j] == g.Seqnames[i] {
      j++
    }
    entries := make([]BedEntry, j-i)
    for k := i; k < j; k++ {
      entries[k-i] = g.bigBedEntry(k, nOpt)
    }
    if err := bbw.Write(g.Seqnames[i], entries); err != nil {
      return err
    }
    i = j
  }
  return bbw.Close()
}

func (granges GRanges) ExportBigBed(filename string, genome Genome, parameters ...BigBedParameters) error {
  f, err := os.Create(filename)
  if err != nil {
    return err
  }
  defer f.Close()

  if err := granges.WriteBigBed(f, genome, parameters...); err != nil {
    return fmt.Errorf("exporting bigBed file to `%s' failed: %v", filename, err)
  }
  return nil
}
