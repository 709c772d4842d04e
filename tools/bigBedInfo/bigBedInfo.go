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

package main

/* -------------------------------------------------------------------------- */

import   "fmt"
import   "log"
import   "os"

import   "github.com/pborman/getopt"

import . "github.com/pbenner/bigbed"

import   "github.com/pbenner/bigbed/lib/bufferedReadSeeker"

/* -------------------------------------------------------------------------- */

func bigBedInfo(filename string) {
  f, err := os.Open(filename)
  if err != nil {
    log.Fatal(err)
  }
  defer f.Close()

  brs, err := bufferedReadSeeker.New(f, 8192)
  if err != nil {
    log.Fatal(err)
  }
  reader, err := NewBigBedReader(brs)
  if err != nil {
    log.Fatal(err)
  }
  header := reader.Bbf.Header

  fmt.Printf("version:             %d\n", header.Version)
  fmt.Printf("field count:         %d\n", header.FieldCount)
  fmt.Printf("defined field count: %d\n", header.DefinedFieldCount)
  fmt.Printf("zoom levels:         %d\n", header.ZoomLevels)
  fmt.Printf("item count:          %d\n", reader.Bbf.Index.NItems)
  fmt.Printf("chromosome count:    %d\n", reader.Genome.Length())
  if header.UncompressBufSize > 0 {
    fmt.Printf("compression:         zlib (buffer size %d)\n", header.UncompressBufSize)
  } else {
    fmt.Printf("compression:         none\n")
  }
  if len(reader.Bbf.AutoSql) > 0 {
    fmt.Printf("autoSql:\n%s\n", reader.Bbf.AutoSql)
  }
}

/* -------------------------------------------------------------------------- */

func main() {

  options := getopt.New()

  optHelp := options.BoolLong("help", 'h', "print help")

  options.SetParameters("<input.bb>")
  options.Parse(os.Args)

  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) != 1 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  bigBedInfo(options.Args()[0])
}
