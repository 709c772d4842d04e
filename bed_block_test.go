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

import   "testing"

/* -------------------------------------------------------------------------- */

func TestBedBlockRoundTrip(t *testing.T) {
  entries := []BedEntry{
    { ChromId: 0, From:  100, To:  200 },
    { ChromId: 0, From:  300, To:  400, OptFields: 1, Name: "feature1" },
    { ChromId: 0, From:  500, To:  600, OptFields: 3, Name: "", Score: 0, Strand: '?' },
    { ChromId: 1, From: 1000, To: 2000, OptFields: 9,
      Name: "feature2", Score: 900, Strand: '-',
      ThickFrom: 1010, ThickTo: 1990, ItemRgb: "255,128,0",
      BlockCount: 2, BlockSizes: []int{10, 20}, BlockStarts: []int{0, 981} },
  }
  encoder := NewBedBlockEncoder()
  for i := 0; i < len(entries); i++ {
    if err := encoder.Append(&entries[i]); err != nil {
      t.Fatal(err)
    }
  }
  if encoder.ItemCount != len(entries) {
    t.Errorf("encoder has %d items, expected %d", encoder.ItemCount, len(entries))
  }
  if encoder.From != 100 || encoder.To != 2000 {
    t.Errorf("encoder has invalid bounding box [%d, %d)", encoder.From, encoder.To)
  }
  decoder := NewBedBlockDecoder(encoder.Buffer.Bytes())
  for i := 0; i < len(entries); i++ {
    if !decoder.Ok() {
      t.Fatalf("decoder stopped after %d records", i)
    }
    entry, err := decoder.Next()
    if err != nil {
      t.Fatal(err)
    }
    if entry.ChromId != entries[i].ChromId || entry.From != entries[i].From || entry.To != entries[i].To {
      t.Errorf("record %d has invalid coordinates", i)
    }
    if entry.OptFields != entries[i].OptFields {
      t.Errorf("record %d has %d optional fields, expected %d", i, entry.OptFields, entries[i].OptFields)
    }
    if entry.Name != entries[i].Name {
      t.Errorf("record %d has invalid name `%s'", i, entry.Name)
    }
    if entries[i].OptFields >= 3 && entry.Strand != entries[i].Strand {
      t.Errorf("record %d has invalid strand `%c'", i, entry.Strand)
    }
    if entries[i].OptFields >= 6 && entry.ItemRgb != entries[i].ItemRgb {
      t.Errorf("record %d has invalid color `%s'", i, entry.ItemRgb)
    }
    if entries[i].OptFields >= 8 && len(entry.BlockSizes) != len(entries[i].BlockSizes) {
      t.Errorf("record %d has invalid block sizes", i)
    }
  }
  if decoder.Ok() {
    t.Errorf("decoder did not stop at the end of the block")
  }
}

func TestBedBlockRgb(t *testing.T) {
  // a single gray value and whitespace around commas are accepted
  for _, str := range []string{"128", "255, 128, 0", "255,128,0"} {
    if _, err := parseBedRgb(str); err != nil {
      t.Errorf("parsing rgb color `%s' failed: %v", str, err)
    }
  }
  for _, str := range []string{"", "1,2", "256,0,0", "-1", "a,b,c", "1,2,3,4"} {
    if _, err := parseBedRgb(str); err == nil {
      t.Errorf("parsing rgb color `%s' did not fail", str)
    }
  }
  if v, _ := parseBedRgb("255, 128, 0"); v != "255,128,0" {
    t.Errorf("rgb color was not normalized: `%s'", v)
  }
}

func TestBedBlockIntList(t *testing.T) {
  // trailing commas are accepted
  if v, err := parseBedIntList("10,20,"); err != nil || len(v) != 2 || v[0] != 10 || v[1] != 20 {
    t.Errorf("parsing int list failed: %v, %v", v, err)
  }
  if v, err := parseBedIntList(""); err != nil || len(v) != 0 {
    t.Errorf("parsing empty int list failed: %v, %v", v, err)
  }
  if _, err := parseBedIntList("10,,20"); err == nil {
    t.Errorf("parsing invalid int list did not fail")
  }
}

func TestBedBlockMalformed(t *testing.T) {
  // a record without a null terminator
  encoder := NewBedBlockEncoder()
  encoder.Append(&BedEntry{ChromId: 0, From: 0, To: 100, OptFields: 1, Name: "x"})

  data := encoder.Buffer.Bytes()
  decoder := NewBedBlockDecoder(data[0:len(data)-1])
  if _, err := decoder.Next(); err != ErrMalformedRecord {
    t.Errorf("expected ErrMalformedRecord, got %v", err)
  }
  if decoder.Ok() {
    t.Errorf("malformed record must terminate the block")
  }
  // a record shorter than the binary header
  decoder = NewBedBlockDecoder([]byte{1, 2, 3})
  if _, err := decoder.Next(); err != ErrMalformedRecord {
    t.Errorf("expected ErrMalformedRecord, got %v", err)
  }
  // an invalid strand
  encoder.Reset()
  encoder.Append(&BedEntry{ChromId: 0, From: 0, To: 100, OptFields: 3, Name: "x", Score: 1, Strand: 'x'})

  decoder = NewBedBlockDecoder(encoder.Buffer.Bytes())
  if _, err := decoder.Next(); err != ErrMalformedRecord {
    t.Errorf("expected ErrMalformedRecord, got %v", err)
  }
}
