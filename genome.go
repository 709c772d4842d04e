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
import "errors"
import "fmt"
import "os"
import "sort"
import "strconv"
import "strings"

/* -------------------------------------------------------------------------- */

// Structure containing chromosome names and sizes.
type Genome struct {
  Seqnames []string
  Lengths  []int
}

/* constructor
 * -------------------------------------------------------------------------- */

func NewGenome(seqnames []string, lengths []int) Genome {
  if len(seqnames) != len(lengths) {
    panic("NewGenome(): invalid parameters!")
  }
  return Genome{seqnames, lengths}
}

/* -------------------------------------------------------------------------- */

// Number of chromosomes in the structure.
func (genome Genome) Length() int {
  return len(genome.Seqnames)
}

// Index of the given chromosome. Returns an error if the chromosome
// is not found.
func (genome Genome) GetIdx(seqname string) (int, error) {
  for i, s := range genome.Seqnames {
    if seqname == s {
      return i, nil
    }
  }
  return -1, errors.New("sequence not found")
}

// Length of the given chromosome. Returns an error if the chromosome
// is not found.
func (genome Genome) SeqLength(seqname string) (int, error) {
  for i, s := range genome.Seqnames {
    if seqname == s {
      return genome.Lengths[i], nil
    }
  }
  return 0, errors.New("sequence not found")
}

// AddSequence appends a chromosome to the structure and returns its
// index. If the chromosome is already present only the index is
// returned.
func (genome *Genome) AddSequence(seqname string, length int) int {
  for i, s := range genome.Seqnames {
    if seqname == s {
      return i
    }
  }
  genome.Seqnames = append(genome.Seqnames, seqname)
  genome.Lengths  = append(genome.Lengths,  length)
  return len(genome.Seqnames)-1
}

// Sort the genome by chromosome name in ascending byte order. The
// bigBed chromosome index assigns identifiers in this order.
func (genome Genome) Sort() Genome {
  indices := make([]int, genome.Length())
  for i := 0; i < len(indices); i++ {
    indices[i] = i
  }
  sort.Slice(indices, func(i, j int) bool {
    return genome.Seqnames[indices[i]] < genome.Seqnames[indices[j]]
  })
  seqnames := make([]string, genome.Length())
  lengths  := make([]int,    genome.Length())
  for i, j := range indices {
    seqnames[i] = genome.Seqnames[j]
    lengths [i] = genome.Lengths [j]
  }
  return NewGenome(seqnames, lengths)
}

/* convert to string
 * -------------------------------------------------------------------------- */

func (genome Genome) String() string {
  var buffer bytes.Buffer

  buffer.WriteString(
    fmt.Sprintf("%10s %10s\n", "seqnames", "lengths"))

  for i := 0; i < genome.Length(); i++ {
    if i != 0 {
      buffer.WriteString("\n")
    }
    buffer.WriteString(
      fmt.Sprintf("%10s %10d",
        genome.Seqnames[i],
        genome.Lengths [i]))
  }
  return buffer.String()
}

/* i/o
 * -------------------------------------------------------------------------- */

// Import chromosome sizes from a UCSC chrom.sizes text file. The
// format is a whitespace separated table where the first column is
// the name of the chromosome and the second column the chromosome
// length.
func (genome *Genome) ReadFile(filename string) error {

  f, err := os.Open(filename)
  if err != nil {
    return err
  }
  defer f.Close()

  seqnames := []string{}
  lengths  := []int{}

  scanner := bufio.NewScanner(f)
  for scanner.Scan() {
    fields := strings.Fields(scanner.Text())
    if len(fields) == 0 {
      continue
    }
    if len(fields) < 2 {
      return fmt.Errorf("invalid genome file `%s'", filename)
    }
    t1, err := strconv.ParseInt(fields[1], 10, 64)
    if err != nil {
      return err
    }
    seqnames = append(seqnames, fields[0])
    lengths  = append(lengths,  int(t1))
  }
  *genome = NewGenome(seqnames, lengths)

  return nil
}
