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

import "bytes"
import "fmt"
import "io"
import "os"
import "strings"
import "encoding/binary"

/* -------------------------------------------------------------------------- */

const BIGBED_MAGIC = 0x8789F2EB

/* -------------------------------------------------------------------------- */

type BigBedParameters struct {
  BlockSize    int
  ItemsPerSlot int
  Compress     bool
}

func DefaultBigBedParameters() BigBedParameters {
  return BigBedParameters{
    BlockSize   : 256,
    ItemsPerSlot: 512,
    Compress    : true }
}

/* -------------------------------------------------------------------------- */

type BigBedFile struct {
  Header    BbiHeader
  ChromData BData
  Index     RTree
  // autoSql schema of the bed records, stored as an opaque blob
  AutoSql []byte
}

func NewBigBedFile() *BigBedFile {
  bbf := new(BigBedFile)
  bbf.Header = *NewBbiHeader()
  bbf.Header.Magic = BIGBED_MAGIC
  bbf.Index  = *NewRTree()
  return bbf
}

func (bbf *BigBedFile) Open(reader io.ReadSeeker) error {
  if _, err := reader.Seek(0, io.SeekStart); err != nil {
    return err
  }
  // parse header
  if err := bbf.Header.Read(reader); err != nil {
    return err
  }
  if bbf.Header.Magic != BIGBED_MAGIC {
    return ErrInvalidMagic
  }
  if bbf.Header.Version < 3 {
    return ErrUnsupportedVersion
  }
  // read the autoSql schema, which is stored as a null-terminated
  // string in front of the chromosome tree
  if bbf.Header.SqlOffset > 0 && bbf.Header.SqlOffset < bbf.Header.CtOffset {
    blob := make([]byte, bbf.Header.CtOffset - bbf.Header.SqlOffset)
    if err := fileReadAt(reader, int64(bbf.Header.SqlOffset), &blob); err != nil {
      return err
    }
    if i := bytes.IndexByte(blob, 0); i != -1 {
      blob = blob[0:i]
    }
    bbf.AutoSql = blob
  }
  // parse chromosome list, which is represented as a tree
  if _, err := reader.Seek(int64(bbf.Header.CtOffset), io.SeekStart); err != nil {
    return err
  }
  if err := bbf.ChromData.Read(reader); err != nil {
    return err
  }
  // parse data index header; nodes are read on demand
  if _, err := reader.Seek(int64(bbf.Header.IndexOffset), io.SeekStart); err != nil {
    return err
  }
  if err := bbf.Index.Read(reader); err != nil {
    return err
  }
  return nil
}

/* -------------------------------------------------------------------------- */

func IsBigBedFile(filename string) (bool, error) {

  var magic uint32

  f, err := os.Open(filename)
  if err != nil {
    return false, err
  }
  defer f.Close()
  // read magic number
  if err := binary.Read(f, binary.LittleEndian, &magic); err != nil {
    return false, err
  }
  if magic != BIGBED_MAGIC {
    return false, nil
  }
  return true, nil

}

/* reader
 * -------------------------------------------------------------------------- */

type BigBedReader struct {
  Reader io.ReadSeeker
  Bbf    BigBedFile
  Genome Genome
  // scratch buffer for block decompression, reused across queries
  blockBuf []byte
}

// External representation of a single bed feature. First and Last
// are 1-based inclusive coordinates; on disk features are stored as
// 0-based half-open intervals.
type BedRecord struct {
  Seqname     string
  First       int
  Last        int
  Strand      byte
  OptFields   int
  Name        string
  Score       int
  ThickFirst  int
  ThickLast   int
  ItemRgb     string
  BlockCount  int
  BlockSizes  []int
  BlockStarts []int
}

type BigBedQueryType struct {
  BedRecord
  Error error
  quit  chan bool
}

// Quit stops the query that produced this record. The signal is
// checked when the producer sends a record, so records already
// buffered in the channel, and possibly a few more, are still
// delivered before the channel is closed.
func (record BigBedQueryType) Quit() {
  if record.quit == nil {
    return
  }
  select {
  case record.quit <- true:
  default:
  }
}

/* -------------------------------------------------------------------------- */

func NewBigBedReader(reader io.ReadSeeker) (*BigBedReader, error) {
  bbr := new(BigBedReader)
  bbf := new(BigBedFile)
  if err := bbf.Open(reader); err != nil {
    return nil, err
  }
  bbr.Reader = reader
  bbr.Bbf    = *bbf

  seqnames := make([]string, len(bbf.ChromData.Keys))
  lengths  := make([]int,    len(bbf.ChromData.Keys))

  for i := 0; i < len(bbf.ChromData.Keys); i++ {
    if len(bbf.ChromData.Values[i]) != 8 {
      return nil, fmt.Errorf("invalid chromosome list")
    }
    idx := int(binary.LittleEndian.Uint32(bbf.ChromData.Values[i][0:4]))
    if idx >= len(bbf.ChromData.Keys) {
      return nil, fmt.Errorf("invalid chromosome index")
    }
    seqnames[idx] = strings.TrimRight(string(bbf.ChromData.Keys[i]), "\x00")
    lengths [idx] = int(binary.LittleEndian.Uint32(bbf.ChromData.Values[i][4:8]))
  }
  bbr.Genome = NewGenome(seqnames, lengths)

  if bbf.Header.UncompressBufSize > 0 {
    bbr.blockBuf = make([]byte, bbf.Header.UncompressBufSize)
  }
  return bbr, nil
}

// ReadBlock reads and, if the file is compressed, uncompresses a
// single data block. For compressed files the returned slice aliases
// the reader's scratch buffer and is invalidated by the next call.
func (reader *BigBedReader) ReadBlock(block RTreeBlock) ([]byte, error) {
  buffer := make([]byte, block.DataSize)
  if err := fileReadAt(reader.Reader, int64(block.DataOffset), &buffer); err != nil {
    return nil, err
  }
  if reader.Bbf.Header.UncompressBufSize > 0 {
    return uncompressSlice(reader.blockBuf, buffer)
  }
  return buffer, nil
}

// Convert a raw block record to its external representation.
func (reader *BigBedReader) record(seqname string, entry *BedEntry) BedRecord {
  record := BedRecord{}
  record.Seqname     = seqname
  record.First       = entry.From+1
  record.Last        = entry.To
  record.Strand      = entry.Strand
  record.OptFields   = entry.OptFields
  record.Name        = entry.Name
  record.Score       = entry.Score
  record.ThickFirst  = entry.ThickFrom+1
  record.ThickLast   = entry.ThickTo
  record.ItemRgb     = entry.ItemRgb
  record.BlockCount  = entry.BlockCount
  record.BlockSizes  = entry.BlockSizes
  record.BlockStarts = entry.BlockStarts
  return record
}

// Query all features overlapping the interval [from, to] on the
// given chromosome, where from and to are 1-based inclusive
// positions. Features are emitted in the order in which the index
// traversal visits the data blocks and, within a block, in on-disk
// order; callers requiring genomic order must sort the result. The
// reader must not be used for another query until the channel has
// been closed; after Quit was called on a record, this happens once
// the producer has seen the signal.
func (reader *BigBedReader) Query(seqname string, from, to int) <- chan BigBedQueryType {
  channel := make(chan BigBedQueryType, 100)
  quit    := make(chan bool, 1)
  go func() {
    defer close(channel)
    reader.query(channel, quit, seqname, from, to)
  }()
  return channel
}

func (reader *BigBedReader) query(channel chan BigBedQueryType, quit chan bool, seqname string, from, to int) {
  chromId, _, err := reader.Bbf.ChromData.Lookup(reader.Reader, seqname)
  if err != nil {
    channel <- BigBedQueryType{Error: err, quit: quit}
    return
  }
  // convert to 0-based half-open coordinates
  blocks, err := reader.Bbf.Index.QueryBlocks(reader.Reader, int(chromId), from-1, to)
  if err != nil {
    channel <- BigBedQueryType{Error: err, quit: quit}
    return
  }
  for _, block := range blocks {
    buffer, err := reader.ReadBlock(block)
    if err != nil {
      channel <- BigBedQueryType{Error: err, quit: quit}
      return
    }
    decoder := NewBedBlockDecoder(buffer)
    for decoder.Ok() {
      entry, err := decoder.Next()
      if err != nil {
        channel <- BigBedQueryType{Error: err, quit: quit}
        return
      }
      // exact overlap test in 0-based half-open coordinates
      if entry.ChromId != int(chromId) {
        continue
      }
      if entry.From >= to || entry.To <= from-1 {
        continue
      }
      r := BigBedQueryType{}
      r.BedRecord = reader.record(seqname, entry)
      r.quit      = quit
      select {
      case channel <- r:
      case <-quit:
        return
      }
    }
  }
}

/* -------------------------------------------------------------------------- */

func BigBedReadGenome(reader io.ReadSeeker) (Genome, error) {
  r, err := NewBigBedReader(reader)
  if err != nil {
    return Genome{}, err
  }
  return r.Genome, nil
}

func BigBedImportGenome(filename string) (Genome, error) {
  f, err := os.Open(filename)
  if err != nil {
    return Genome{}, err
  }
  defer f.Close()

  if genome, err := BigBedReadGenome(f); err != nil {
    return genome, fmt.Errorf("importing genome from `%s' failed: %v", filename, err)
  } else {
    return genome, nil
  }
}

/* writer
 * -------------------------------------------------------------------------- */

type BigBedWriter struct {
  Writer     io.WriteSeeker
  Bbf        BigBedFile
  Genome     Genome
  Parameters BigBedParameters
  Leaves     []*RVertex
  encoder    *BedBlockEncoder
  // chromosome id of the sequence currently being written
  chromId      int
  maxBlockSize int
  closed       bool
}

// Create a new bigBed writer. The genome lists all chromosomes that
// may appear in the file together with their sizes; chromosome
// identifiers are assigned in ascending byte order of the names.
// Space for the file header, the zoom header table and the total
// summary is reserved first; the chromosome tree is written
// immediately. Zoom levels and summary statistics are not computed,
// the reserved regions remain zero.
func NewBigBedWriter(writer io.WriteSeeker, genome Genome, parameters BigBedParameters) (*BigBedWriter, error) {
  if parameters.BlockSize <= 0 || parameters.ItemsPerSlot <= 0 {
    return nil, fmt.Errorf("NewBigBedWriter(): invalid parameters")
  }
  bbw := new(BigBedWriter)
  bbf := NewBigBedFile()

  bbw.Genome     = genome.Sort()
  bbw.Parameters = parameters
  bbw.Writer     = writer
  bbw.encoder    = NewBedBlockEncoder()
  bbw.chromId    = -1

  bbf.Header.FieldCount        = 3
  bbf.Header.DefinedFieldCount = 3
  if parameters.Compress {
    // updated while writing blocks
    bbf.Header.UncompressBufSize = 1
  } else {
    bbf.Header.UncompressBufSize = 0
  }
  // write header
  if err := bbf.Header.Write(writer); err != nil {
    return nil, err
  }
  // reserve space for the maximum number of zoom headers and the
  // total summary
  reserved := make([]byte, 10*24 + 40)
  if err := binary.Write(writer, binary.LittleEndian, reserved); err != nil {
    return nil, err
  }
  // write chromosome tree
  if offset, err := writer.Seek(0, io.SeekCurrent); err != nil {
    return nil, err
  } else {
    bbf.Header.CtOffset = uint64(offset)
  }
  if err := bbw.writeChromList(bbf); err != nil {
    return nil, err
  }
  // data section starts here with the number of records
  if offset, err := writer.Seek(0, io.SeekCurrent); err != nil {
    return nil, err
  } else {
    bbf.Header.DataOffset = uint64(offset)
  }
  if err := binary.Write(writer, binary.LittleEndian, uint64(0)); err != nil {
    return nil, err
  }
  bbw.Bbf = *bbf

  return bbw, nil
}

func (bbw *BigBedWriter) writeChromList(bbf *BigBedFile) error {
  data := NewBData()
  for _, name := range bbw.Genome.Seqnames {
    if data.KeySize < uint32(len(name)) {
      data.KeySize = uint32(len(name))
    }
  }
  data.ValueSize     = 8
  data.ItemsPerBlock = uint32(iMax(1, iMin(bbw.Parameters.BlockSize, bbw.Genome.Length())))
  for idx, name := range bbw.Genome.Seqnames {
    key   := make([]byte, data.KeySize)
    value := make([]byte, data.ValueSize)
    copy(key, name)
    binary.LittleEndian.PutUint32(value[0:4], uint32(idx))
    binary.LittleEndian.PutUint32(value[4:8], uint32(bbw.Genome.Lengths[idx]))
    if err := data.Add(key, value); err != nil {
      return err
    }
  }
  bbf.ChromData = *data
  return data.Write(bbw.Writer)
}

func (bbw *BigBedWriter) flushBlock() error {
  if bbw.encoder.ItemCount == 0 {
    return nil
  }
  block := bbw.encoder.Buffer.Bytes()
  if len(block) > bbw.maxBlockSize {
    bbw.maxBlockSize = len(block)
  }
  if bbw.Parameters.Compress {
    if compressed, err := compressSlice(block); err != nil {
      return err
    } else {
      block = compressed
    }
  }
  offset, err := bbw.Writer.Seek(0, io.SeekCurrent)
  if err != nil {
    return err
  }
  if err := binary.Write(bbw.Writer, binary.LittleEndian, block); err != nil {
    return err
  }
  // append the block to the current index leaf
  n := len(bbw.Leaves)
  if n == 0 || int(bbw.Leaves[n-1].NChildren) == bbw.Parameters.BlockSize {
    v := new(RVertex)
    v.IsLeaf = 1
    bbw.Leaves = append(bbw.Leaves, v)
    n++
  }
  v := bbw.Leaves[n-1]
  v.ChrIdxStart = append(v.ChrIdxStart, uint32(bbw.chromId))
  v.ChrIdxEnd   = append(v.ChrIdxEnd,   uint32(bbw.chromId))
  v.BaseStart   = append(v.BaseStart,   uint32(bbw.encoder.From))
  v.BaseEnd     = append(v.BaseEnd,     uint32(bbw.encoder.To))
  v.DataOffset  = append(v.DataOffset,  uint64(offset))
  v.Sizes       = append(v.Sizes,       uint64(len(block)))
  v.NChildren++

  bbw.encoder.Reset()

  return nil
}

// Write all features of one sequence. Entries must be sorted by
// start position; sequences must be written in ascending byte order
// of their names. Features are packed into blocks of at most
// ItemsPerSlot records; blocks never span sequences.
func (bbw *BigBedWriter) Write(seqname string, entries []BedEntry) error {
  idx, err := bbw.Genome.GetIdx(seqname)
  if err != nil {
    return err
  }
  if idx < bbw.chromId {
    return fmt.Errorf("sequence `%s' is out of order", seqname)
  }
  bbw.chromId = idx

  for i := 0; i < len(entries); i++ {
    if bbw.encoder.ItemCount >= bbw.Parameters.ItemsPerSlot {
      if err := bbw.flushBlock(); err != nil {
        return err
      }
    }
    entry := entries[i]
    entry.ChromId = idx
    if entry.OptFields+3 > int(bbw.Bbf.Header.FieldCount) {
      bbw.Bbf.Header.FieldCount        = uint16(entry.OptFields+3)
      bbw.Bbf.Header.DefinedFieldCount = uint16(entry.OptFields+3)
    }
    if err := bbw.encoder.Append(&entry); err != nil {
      return err
    }
    bbw.Bbf.Header.NItems++
  }
  // blocks do not span sequences
  return bbw.flushBlock()
}

// Close writes the data index and back-patches the file header. The
// writer cannot be used afterwards.
func (bbw *BigBedWriter) Close() error {
  if bbw.closed {
    return fmt.Errorf("writer is already closed")
  }
  bbw.closed = true

  if err := bbw.flushBlock(); err != nil {
    return err
  }
  // write data index
  if offset, err := bbw.Writer.Seek(0, io.SeekCurrent); err != nil {
    return err
  } else {
    bbw.Bbf.Header.IndexOffset = uint64(offset)
  }
  tree := NewRTree()
  tree.BlockSize     = uint32(bbw.Parameters.BlockSize)
  tree.NItemsPerSlot = uint32(bbw.Parameters.ItemsPerSlot)
  for _, v := range bbw.Leaves {
    tree.NItems += uint64(v.NChildren)
  }
  if err := tree.BuildTree(bbw.Leaves); err != nil {
    return err
  }
  bbw.Leaves = nil
  if err := tree.Write(bbw.Writer); err != nil {
    return err
  }
  bbw.Bbf.Index = *tree
  // back-patch the file header
  if bbw.Parameters.Compress {
    bbw.Bbf.Header.UncompressBufSize = uint32(iMax(1, bbw.maxBlockSize))
  }
  if err := bbw.Bbf.Header.WriteOffsets(bbw.Writer); err != nil {
    return err
  }
  if err := bbw.Bbf.Header.WriteFieldCounts(bbw.Writer); err != nil {
    return err
  }
  if err := bbw.Bbf.Header.WriteUncompressBufSize(bbw.Writer); err != nil {
    return err
  }
  if err := bbw.Bbf.Header.WriteNItems(bbw.Writer); err != nil {
    return err
  }
  // leave the stream positioned at the end of the file
  if _, err := bbw.Writer.Seek(0, io.SeekEnd); err != nil {
    return err
  }
  return nil
}
