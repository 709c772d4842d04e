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

package bufferedReadSeeker

/* -------------------------------------------------------------------------- */

import   "bytes"
import   "io"
import   "testing"

/* -------------------------------------------------------------------------- */

func TestBufferedReadSeeker(t *testing.T) {
  data := make([]byte, 1000)
  for i := 0; i < len(data); i++ {
    data[i] = byte(i)
  }
  reader, err := New(bytes.NewReader(data), 16)
  if err != nil {
    t.Fatal(err)
  }
  // a read spanning several buffer refills
  p := make([]byte, 10)
  for i := 0; i < 10; i++ {
    if n, err := reader.Read(p); err != nil || n != len(p) {
      t.Fatalf("read %d failed: %v", i, err)
    }
    for j := 0; j < len(p); j++ {
      if p[j] != byte(10*i+j) {
        t.Fatalf("read %d returned invalid data", i)
      }
    }
  }
  // seek backwards and read again
  if _, err := reader.Seek(5, io.SeekStart); err != nil {
    t.Fatal(err)
  }
  if _, err := reader.Read(p); err != nil {
    t.Fatal(err)
  }
  if p[0] != 5 || p[9] != 14 {
    t.Errorf("read after seek returned invalid data")
  }
  // relative seek
  if position, err := reader.Seek(10, io.SeekCurrent); err != nil || position != 25 {
    t.Errorf("relative seek returned invalid position: %d", position)
  }
  if _, err := reader.Read(p); err != nil {
    t.Fatal(err)
  }
  if p[0] != 25 {
    t.Errorf("read after relative seek returned invalid data")
  }
  // a read larger than the buffer bypasses it
  q := make([]byte, 100)
  if _, err := reader.Seek(500, io.SeekStart); err != nil {
    t.Fatal(err)
  }
  if n, err := reader.Read(q); err != nil || n != len(q) {
    t.Fatalf("large read failed: %v", err)
  }
  v500, v599 := 500, 599
  if q[0] != byte(v500) || q[99] != byte(v599) {
    t.Errorf("large read returned invalid data")
  }
  // subsequent buffered reads continue at the right position
  if _, err := reader.Read(p); err != nil {
    t.Fatal(err)
  }
  v600 := 600
  if p[0] != byte(v600) {
    t.Errorf("read after large read returned invalid data")
  }
}
