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

// A bigBed data block is a sequence of null-terminated records. Each
// record starts with three 32 bit integers (chromosome id, start and
// end position) followed by the optional bed fields as tab-separated
// text. Optional fields are positional, i.e. a present field implies
// that all earlier optional fields are present as well.

/* -------------------------------------------------------------------------- */

import "bytes"
import "fmt"
import "strconv"
import "strings"
import "encoding/binary"

/* -------------------------------------------------------------------------- */

// One record of a bigBed data block. From and To are 0-based
// half-open coordinates. OptFields is the number of optional bed
// fields present in the record.
type BedEntry struct {
  ChromId     int
  From        int
  To          int
  OptFields   int
  Name        string
  Score       int
  Strand      byte
  ThickFrom   int
  ThickTo     int
  ItemRgb     string
  BlockCount  int
  BlockSizes  []int
  BlockStarts []int
}

/* -------------------------------------------------------------------------- */

func parseBedInt(str string) (int, error) {
  str = strings.TrimSpace(str)
  if len(str) == 0 {
    return 0, fmt.Errorf("empty numeric field")
  }
  v, err := strconv.Atoi(str)
  if err != nil {
    return 0, err
  }
  return v, nil
}

// Parse an rgb color, which is either a single gray value or three
// comma separated values in the range 0-255. Horizontal whitespace
// around commas is accepted. The color is returned in its canonical
// form without whitespace.
func parseBedRgb(str string) (string, error) {
  fields := strings.Split(str, ",")
  if len(fields) != 1 && len(fields) != 3 {
    return "", fmt.Errorf("invalid rgb color `%s'", str)
  }
  values := make([]string, len(fields))
  for i := 0; i < len(fields); i++ {
    v, err := parseBedInt(fields[i])
    if err != nil {
      return "", fmt.Errorf("invalid rgb color `%s'", str)
    }
    if v < 0 || v > 255 {
      return "", fmt.Errorf("invalid rgb color `%s'", str)
    }
    values[i] = strconv.Itoa(v)
  }
  return strings.Join(values, ","), nil
}

// Parse a comma separated list of integers with an optional trailing
// comma.
func parseBedIntList(str string) ([]int, error) {
  str = strings.TrimSuffix(str, ",")
  if len(str) == 0 {
    return []int{}, nil
  }
  fields := strings.Split(str, ",")
  values := make([]int, len(fields))
  for i := 0; i < len(fields); i++ {
    v, err := parseBedInt(fields[i])
    if err != nil {
      return nil, err
    }
    values[i] = v
  }
  return values, nil
}

/* block decoder
 * -------------------------------------------------------------------------- */

// Streaming decoder over one uncompressed data block. The decoder
// holds a position into the buffer and advances past exactly one
// record per call to Next. The buffer is owned by the parent reader
// and may be overwritten when the reader reads the next block.
type BedBlockDecoder struct {
  buffer   []byte
  position int
}

func NewBedBlockDecoder(buffer []byte) *BedBlockDecoder {
  return &BedBlockDecoder{buffer, 0}
}

// Ok returns true if the block contains more records.
func (decoder *BedBlockDecoder) Ok() bool {
  return decoder.position < len(decoder.buffer)
}

func (decoder *BedBlockDecoder) parseOptFields(entry *BedEntry, fields []string) error {
  var err error

  for i := 0; i < len(fields); i++ {
    switch i {
    case 0:
      entry.Name = fields[0]
    case 1:
      if entry.Score, err = parseBedInt(fields[1]); err != nil {
        return err
      }
    case 2:
      if len(fields[2]) != 1 {
        return fmt.Errorf("invalid strand `%s'", fields[2])
      }
      switch fields[2][0] {
      case '+', '-', '.', '?':
        entry.Strand = fields[2][0]
      default:
        return fmt.Errorf("invalid strand `%s'", fields[2])
      }
    case 3:
      if entry.ThickFrom, err = parseBedInt(fields[3]); err != nil {
        return err
      }
    case 4:
      if entry.ThickTo, err = parseBedInt(fields[4]); err != nil {
        return err
      }
    case 5:
      if entry.ItemRgb, err = parseBedRgb(fields[5]); err != nil {
        return err
      }
    case 6:
      if entry.BlockCount, err = parseBedInt(fields[6]); err != nil {
        return err
      }
    case 7:
      if entry.BlockSizes, err = parseBedIntList(fields[7]); err != nil {
        return err
      }
    case 8:
      if entry.BlockStarts, err = parseBedIntList(fields[8]); err != nil {
        return err
      }
    default:
      return fmt.Errorf("too many fields")
    }
  }
  entry.OptFields = len(fields)
  return nil
}

// Next decodes one record and advances the decoder. Once the final
// null terminator has been consumed, Ok returns false. A grammar
// violation is reported as ErrMalformedRecord and terminates the
// block.
func (decoder *BedBlockDecoder) Next() (*BedEntry, error) {
  if !decoder.Ok() {
    return nil, fmt.Errorf("no more records in data block")
  }
  if decoder.position+12 > len(decoder.buffer) {
    decoder.position = len(decoder.buffer)
    return nil, ErrMalformedRecord
  }
  entry := BedEntry{}
  entry.ChromId = int(binary.LittleEndian.Uint32(decoder.buffer[decoder.position+0:decoder.position+ 4]))
  entry.From    = int(binary.LittleEndian.Uint32(decoder.buffer[decoder.position+4:decoder.position+ 8]))
  entry.To      = int(binary.LittleEndian.Uint32(decoder.buffer[decoder.position+8:decoder.position+12]))
  // default values for absent optional fields
  entry.Strand    = '*'
  entry.ThickFrom = entry.From
  entry.ThickTo   = entry.To
  entry.ItemRgb   = "0,0,0"

  // the text part of the record extends to the null terminator
  i := bytes.IndexByte(decoder.buffer[decoder.position+12:], 0)
  if i == -1 {
    decoder.position = len(decoder.buffer)
    return nil, ErrMalformedRecord
  }
  text := string(decoder.buffer[decoder.position+12:decoder.position+12+i])
  decoder.position += 12+i+1

  if len(text) > 0 {
    if err := decoder.parseOptFields(&entry, strings.Split(text, "\t")); err != nil {
      decoder.position = len(decoder.buffer)
      return nil, ErrMalformedRecord
    }
  }
  return &entry, nil
}

/* block encoder
 * -------------------------------------------------------------------------- */

// Encoder for one data block. Records are appended to an in-memory
// buffer; the caller flushes the buffer to the file once the block
// is full. The encoder keeps track of the bounding box of all
// appended records.
type BedBlockEncoder struct {
  Buffer    bytes.Buffer
  ItemCount int
  From      int
  To        int
  tmp       []byte
}

func NewBedBlockEncoder() *BedBlockEncoder {
  encoder := BedBlockEncoder{}
  encoder.tmp = make([]byte, 12)
  return &encoder
}

func (encoder *BedBlockEncoder) Append(entry *BedEntry) error {
  if entry.From < 0 || entry.To < entry.From {
    return fmt.Errorf("invalid record interval [%d, %d)", entry.From, entry.To)
  }
  binary.LittleEndian.PutUint32(encoder.tmp[0: 4], uint32(entry.ChromId))
  binary.LittleEndian.PutUint32(encoder.tmp[4: 8], uint32(entry.From))
  binary.LittleEndian.PutUint32(encoder.tmp[8:12], uint32(entry.To))
  if _, err := encoder.Buffer.Write(encoder.tmp); err != nil {
    return err
  }
  for i := 0; i < entry.OptFields; i++ {
    if i != 0 {
      encoder.Buffer.WriteByte('\t')
    }
    switch i {
    case 0:
      encoder.Buffer.WriteString(entry.Name)
    case 1:
      encoder.Buffer.WriteString(strconv.Itoa(entry.Score))
    case 2:
      strand := entry.Strand
      if strand == '*' || strand == 0 {
        strand = '.'
      }
      encoder.Buffer.WriteByte(strand)
    case 3:
      encoder.Buffer.WriteString(strconv.Itoa(entry.ThickFrom))
    case 4:
      encoder.Buffer.WriteString(strconv.Itoa(entry.ThickTo))
    case 5:
      encoder.Buffer.WriteString(entry.ItemRgb)
    case 6:
      encoder.Buffer.WriteString(strconv.Itoa(entry.BlockCount))
    case 7:
      encoder.Buffer.WriteString(intListString(entry.BlockSizes))
    case 8:
      encoder.Buffer.WriteString(intListString(entry.BlockStarts))
    default:
      return fmt.Errorf("too many fields")
    }
  }
  encoder.Buffer.WriteByte(0)

  if encoder.ItemCount == 0 || entry.From < encoder.From {
    encoder.From = entry.From
  }
  if encoder.ItemCount == 0 || entry.To > encoder.To {
    encoder.To = entry.To
  }
  encoder.ItemCount++

  return nil
}

func (encoder *BedBlockEncoder) Reset() {
  encoder.Buffer.Reset()
  encoder.ItemCount = 0
  encoder.From      = 0
  encoder.To        = 0
}

/* -------------------------------------------------------------------------- */

func intListString(values []int) string {
  var buffer bytes.Buffer
  for i := 0; i < len(values); i++ {
    if i != 0 {
      buffer.WriteByte(',')
    }
    buffer.WriteString(strconv.Itoa(values[i]))
  }
  return buffer.String()
}
