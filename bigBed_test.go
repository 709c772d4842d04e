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

import   "bytes"
import   "io"
import   "testing"

/* -------------------------------------------------------------------------- */

// In-memory io.ReadWriteSeeker used to write and read bigBed files
// without touching the file system.
type fileBuffer struct {
  data     []byte
  position int64
}

func newFileBuffer(data []byte) *fileBuffer {
  return &fileBuffer{data, 0}
}

func (buffer *fileBuffer) Read(p []byte) (int, error) {
  if buffer.position >= int64(len(buffer.data)) {
    return 0, io.EOF
  }
  n := copy(p, buffer.data[buffer.position:])
  buffer.position += int64(n)
  return n, nil
}

func (buffer *fileBuffer) Write(p []byte) (int, error) {
  if n := buffer.position + int64(len(p)); n > int64(len(buffer.data)) {
    if n <= int64(cap(buffer.data)) {
      buffer.data = buffer.data[0:n]
    } else {
      data := make([]byte, n, 2*n)
      copy(data, buffer.data)
      buffer.data = data
    }
  }
  copy(buffer.data[buffer.position:], p)
  buffer.position += int64(len(p))
  return len(p), nil
}

func (buffer *fileBuffer) Seek(offset int64, whence int) (int64, error) {
  switch whence {
  case io.SeekStart:
    buffer.position = offset
  case io.SeekCurrent:
    buffer.position += offset
  case io.SeekEnd:
    buffer.position = int64(len(buffer.data)) + offset
  }
  return buffer.position, nil
}

/* -------------------------------------------------------------------------- */

func collectRecords(t *testing.T, reader *BigBedReader, seqname string, from, to int) []BedRecord {
  records := []BedRecord{}
  for record := range reader.Query(seqname, from, to) {
    if record.Error != nil {
      t.Fatalf("query (%s, %d, %d) failed: %v", seqname, from, to, record.Error)
    }
    records = append(records, record.BedRecord)
  }
  return records
}

func writeTestFile(t *testing.T, granges GRanges, genome Genome, parameters ...BigBedParameters) *fileBuffer {
  buffer := newFileBuffer(nil)
  if err := granges.WriteBigBed(buffer, genome, parameters...); err != nil {
    t.Fatalf("writing bigBed file failed: %v", err)
  }
  return buffer
}

/* -------------------------------------------------------------------------- */

func TestBigBedSingleInterval(t *testing.T) {
  // the interval [10, 20] in 1-based inclusive coordinates
  granges := NewGRanges(
    []string{"chr1"}, []int{9}, []int{20}, []byte{'+'})

  buffer := writeTestFile(t, granges, Genome{})

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  records := collectRecords(t, reader, "chr1", 1, 100)
  if len(records) != 1 {
    t.Fatalf("expected one record, got %d", len(records))
  }
  if records[0].First != 10 || records[0].Last != 20 {
    t.Errorf("record has invalid coordinates [%d, %d]", records[0].First, records[0].Last)
  }
  if records[0].Strand != '+' {
    t.Errorf("record has invalid strand `%c'", records[0].Strand)
  }
  if records := collectRecords(t, reader, "chr1", 21, 100); len(records) != 0 {
    t.Errorf("expected no records, got %d", len(records))
  }
  // query on an unknown chromosome must fail
  result := <- reader.Query("chr2", 1, 100)
  if result.Error != ErrNotFound {
    t.Errorf("expected ErrNotFound, got %v", result.Error)
  }
}

func TestBigBedOverlapQueries(t *testing.T) {
  // intervals [1, 10] and [5, 15] in 1-based inclusive coordinates
  granges := NewGRanges(
    []string{"chr1", "chr1"}, []int{0, 4}, []int{10, 15}, nil)

  buffer := writeTestFile(t, granges, Genome{})

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  if records := collectRecords(t, reader, "chr1", 6, 7); len(records) != 2 {
    t.Errorf("expected two records, got %d", len(records))
  }
  records := collectRecords(t, reader, "chr1", 11, 15)
  if len(records) != 1 {
    t.Fatalf("expected one record, got %d", len(records))
  }
  if records[0].First != 5 || records[0].Last != 15 {
    t.Errorf("record has invalid coordinates [%d, %d]", records[0].First, records[0].Last)
  }
}

func TestBigBedChromOrder(t *testing.T) {
  // chromosome identifiers are assigned in ascending byte order:
  // chr1 < chr10 < chr2
  granges := NewGRanges(
    []string{"chr1", "chr10", "chr2"},
    []int   {100, 200, 300},
    []int   {150, 250, 350}, nil)

  buffer := writeTestFile(t, granges, Genome{})

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  for i, name := range []string{"chr1", "chr10", "chr2"} {
    chromId, _, err := reader.Bbf.ChromData.Lookup(reader.Reader, name)
    if err != nil {
      t.Fatalf("looking up `%s' failed: %v", name, err)
    }
    if int(chromId) != i {
      t.Errorf("chromosome `%s' has id %d, expected %d", name, chromId, i)
    }
  }
  if records := collectRecords(t, reader, "chr10", 1, 1000); len(records) != 1 {
    t.Errorf("expected one record on chr10, got %d", len(records))
  }
}

func TestBigBedManyIntervals(t *testing.T) {
  n        := 10000
  seqnames := make([]string, n)
  from     := make([]int,    n)
  to       := make([]int,    n)
  for i := 0; i < n; i++ {
    seqnames[i] = "chr1"
    from    [i] = 10*i
    to      [i] = 10*i+5
  }
  granges := NewGRanges(seqnames, from, to, nil)

  parameters := DefaultBigBedParameters()
  parameters.BlockSize    = 256
  parameters.ItemsPerSlot = 512

  buffer := writeTestFile(t, granges, Genome{}, parameters)

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  // a point query in the middle of the file
  records := collectRecords(t, reader, "chr1", 50001, 50003)
  if len(records) != 1 {
    t.Fatalf("expected one record, got %d", len(records))
  }
  if records[0].First != 50001 || records[0].Last != 50005 {
    t.Errorf("record has invalid coordinates [%d, %d]", records[0].First, records[0].Last)
  }
  // the index must prune all but a few candidate blocks
  chromId, _, err := reader.Bbf.ChromData.Lookup(reader.Reader, "chr1")
  if err != nil {
    t.Fatal(err)
  }
  blocks, err := reader.Bbf.Index.QueryBlocks(reader.Reader, int(chromId), 50000, 50003)
  if err != nil {
    t.Fatal(err)
  }
  if len(blocks) > divIntUp(n, parameters.ItemsPerSlot) {
    t.Errorf("index returned %d candidate blocks", len(blocks))
  }
  if len(blocks) > 2 {
    t.Errorf("point query visited %d candidate blocks", len(blocks))
  }
  // a full query returns all records
  if records := collectRecords(t, reader, "chr1", 1, 10*n); len(records) != n {
    t.Errorf("expected %d records, got %d", n, len(records))
  }
}

func TestBigBedOptionalFields(t *testing.T) {
  granges := NewGRanges(
    []string{"chr1"}, []int{999}, []int{2000}, []byte{'-'})
  granges.AddMeta("name",        []string{"feature1"})
  granges.AddMeta("score",       []int{900})
  granges.AddMeta("thickStart",  []int{1010})
  granges.AddMeta("thickEnd",    []int{1990})
  granges.AddMeta("itemRgb",     []string{"255,128,0"})
  granges.AddMeta("blockCount",  []int{2})
  granges.AddMeta("blockSizes",  [][]int{{10, 20}})
  granges.AddMeta("blockStarts", [][]int{{0, 981}})

  buffer := writeTestFile(t, granges, Genome{})

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  records := collectRecords(t, reader, "chr1", 1, 3000)
  if len(records) != 1 {
    t.Fatalf("expected one record, got %d", len(records))
  }
  r := records[0]
  if r.OptFields != 9 {
    t.Errorf("record has %d optional fields, expected 9", r.OptFields)
  }
  if r.Name != "feature1" {
    t.Errorf("record has invalid name `%s'", r.Name)
  }
  if r.Score != 900 {
    t.Errorf("record has invalid score %d", r.Score)
  }
  if r.Strand != '-' {
    t.Errorf("record has invalid strand `%c'", r.Strand)
  }
  if r.ThickFirst != 1011 || r.ThickLast != 1990 {
    t.Errorf("record has invalid thick interval [%d, %d]", r.ThickFirst, r.ThickLast)
  }
  if r.ItemRgb != "255,128,0" {
    t.Errorf("record has invalid color `%s'", r.ItemRgb)
  }
  if r.BlockCount != 2 {
    t.Errorf("record has invalid block count %d", r.BlockCount)
  }
  if len(r.BlockSizes) != 2 || r.BlockSizes[0] != 10 || r.BlockSizes[1] != 20 {
    t.Errorf("record has invalid block sizes %v", r.BlockSizes)
  }
  if len(r.BlockStarts) != 2 || r.BlockStarts[0] != 0 || r.BlockStarts[1] != 981 {
    t.Errorf("record has invalid block starts %v", r.BlockStarts)
  }
  // full import must reproduce the original collection
  imported := GRanges{}
  if _, err := buffer.Seek(0, io.SeekStart); err != nil {
    t.Fatal(err)
  }
  bbr, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  if err := imported.ReadBigBed(bbr); err != nil {
    t.Fatal(err)
  }
  if imported.Length() != 1 {
    t.Fatalf("expected one range, got %d", imported.Length())
  }
  if imported.Ranges[0] != granges.Ranges[0] {
    t.Errorf("imported range is %v, expected %v", imported.Ranges[0], granges.Ranges[0])
  }
  if v := imported.GetMetaStr("itemRgb"); len(v) != 1 || v[0] != "255,128,0" {
    t.Errorf("imported color is invalid: %v", v)
  }
  if v := imported.GetMetaIntMatrix("blockSizes"); len(v) != 1 || len(v[0]) != 2 || v[0][0] != 10 || v[0][1] != 20 {
    t.Errorf("imported block sizes are invalid: %v", v)
  }
}

func TestBigBedInvalidMagic(t *testing.T) {
  granges := NewGRanges(
    []string{"chr1"}, []int{9}, []int{20}, nil)

  buffer := writeTestFile(t, granges, Genome{})

  // corrupt the file magic
  data := make([]byte, len(buffer.data))
  copy(data, buffer.data)
  data[0], data[1], data[2], data[3] = 0, 0, 0, 0

  if _, err := NewBigBedReader(newFileBuffer(data)); err != ErrInvalidMagic {
    t.Errorf("expected ErrInvalidMagic, got %v", err)
  }
  // corrupt the chromosome tree magic
  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  ctOffset := reader.Bbf.Header.CtOffset

  copy(data, buffer.data)
  data[ctOffset+0], data[ctOffset+1], data[ctOffset+2], data[ctOffset+3] = 0, 0, 0, 0

  if _, err := NewBigBedReader(newFileBuffer(data)); err != ErrInvalidMagic {
    t.Errorf("expected ErrInvalidMagic, got %v", err)
  }
  // files older than version 3 are not supported
  copy(data, buffer.data)
  data[4], data[5] = 2, 0

  if _, err := NewBigBedReader(newFileBuffer(data)); err != ErrUnsupportedVersion {
    t.Errorf("expected ErrUnsupportedVersion, got %v", err)
  }
}

func TestBigBedEmptyFile(t *testing.T) {
  granges := GRanges{}
  genome  := NewGenome([]string{"chr1", "chr2"}, []int{1000, 2000})

  buffer := writeTestFile(t, granges, genome)

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  if reader.Genome.Length() != 2 {
    t.Errorf("expected two chromosomes, got %d", reader.Genome.Length())
  }
  // sequences without features are present in the chromosome index
  // and yield empty queries
  if records := collectRecords(t, reader, "chr1", 1, 1000); len(records) != 0 {
    t.Errorf("expected no records, got %d", len(records))
  }
}

func TestBigBedEmptySequence(t *testing.T) {
  granges := NewGRanges(
    []string{"chr2"}, []int{10}, []int{20}, nil)
  genome  := NewGenome([]string{"chr1", "chr2"}, []int{1000, 2000})

  buffer := writeTestFile(t, granges, genome)

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  if records := collectRecords(t, reader, "chr1", 1, 1000); len(records) != 0 {
    t.Errorf("expected no records on chr1, got %d", len(records))
  }
  if records := collectRecords(t, reader, "chr2", 1, 2000); len(records) != 1 {
    t.Errorf("expected one record on chr2, got %d", len(records))
  }
}

func TestBigBedUncompressed(t *testing.T) {
  granges := NewGRanges(
    []string{"chr1", "chr1"}, []int{0, 100}, []int{50, 200}, nil)

  parameters := DefaultBigBedParameters()
  parameters.Compress = false

  buffer := writeTestFile(t, granges, Genome{}, parameters)

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  if reader.Bbf.Header.UncompressBufSize != 0 {
    t.Errorf("uncompressed file has nonzero buffer size")
  }
  if records := collectRecords(t, reader, "chr1", 1, 200); len(records) != 2 {
    t.Errorf("expected two records, got %d", len(records))
  }
}

func TestBigBedDeterministic(t *testing.T) {
  granges := NewGRanges(
    []string{"chr1", "chr1", "chr2"},
    []int   {0, 100, 20},
    []int   {50, 200, 80}, nil)
  granges.AddMeta("name", []string{"a", "b", "c"})

  buffer1 := writeTestFile(t, granges, Genome{})
  buffer2 := writeTestFile(t, granges, Genome{})

  if !bytes.Equal(buffer1.data, buffer2.data) {
    t.Errorf("writing the same collection twice produced different files")
  }
}

func TestBigBedQuit(t *testing.T) {
  n        := 2000
  seqnames := make([]string, n)
  from     := make([]int,    n)
  to       := make([]int,    n)
  for i := 0; i < n; i++ {
    seqnames[i] = "chr1"
    from    [i] = 10*i
    to      [i] = 10*i+5
  }
  granges := NewGRanges(seqnames, from, to, nil)

  buffer := writeTestFile(t, granges, Genome{})

  reader, err := NewBigBedReader(buffer)
  if err != nil {
    t.Fatal(err)
  }
  // abandon the query after the first record
  count := 0
  for record := range reader.Query("chr1", 1, 10*n) {
    if record.Error != nil {
      t.Fatal(record.Error)
    }
    count++
    record.Quit()
  }
  if count == 0 {
    t.Errorf("expected at least one record")
  }
  // the reader can be reused afterwards
  if records := collectRecords(t, reader, "chr1", 1, 25); len(records) != 3 {
    t.Errorf("expected three records, got %d", len(records))
  }
}
