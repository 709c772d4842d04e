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

import   "bufio"
import   "compress/gzip"
import   "fmt"
import   "log"
import   "os"
import   "strings"

import   "github.com/pborman/getopt"

import . "github.com/pbenner/bigbed"

/* -------------------------------------------------------------------------- */

type Config struct {
  BlockSize    int
  ItemsPerSlot int
  Uncompressed bool
  UCSC         string
  Verbose      int
}

/* -------------------------------------------------------------------------- */

func PrintStderr(config Config, level int, format string, args ...interface{}) {
  if config.Verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

// Determine the number of columns from the first data line of a bed
// file.
func bedColumns(filename string) (int, error) {
  f, err := os.Open(filename)
  if err != nil {
    return 0, err
  }
  defer f.Close()

  var scanner *bufio.Scanner
  if strings.HasSuffix(filename, ".gz") {
    z, err := gzip.NewReader(f)
    if err != nil {
      return 0, err
    }
    defer z.Close()
    scanner = bufio.NewScanner(z)
  } else {
    scanner = bufio.NewScanner(f)
  }
  for scanner.Scan() {
    fields := strings.Split(scanner.Text(), "\t")
    if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
      continue
    }
    switch {
    case len(fields) >= 12:
      return 12, nil
    case len(fields) >=  9:
      return  9, nil
    case len(fields) >=  6:
      return  6, nil
    case len(fields) >=  3:
      return  3, nil
    }
    return 0, fmt.Errorf("bed file must have at least three columns")
  }
  return 3, nil
}

func importBed(config Config, filename string) GRanges {
  granges := GRanges{}
  columns, err := bedColumns(filename)
  if err != nil {
    log.Fatal(err)
  }
  PrintStderr(config, 1, "Reading bed file `%s' (%d columns)... ", filename, columns)
  switch columns {
  case  3: err = granges.ReadBed3 (filename)
  case  6: err = granges.ReadBed6 (filename)
  case  9: err = granges.ReadBed9 (filename)
  case 12: err = granges.ReadBed12(filename)
  }
  if err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")
  return granges
}

func importGenome(config Config, filename string) Genome {
  genome := Genome{}
  if config.UCSC != "" {
    PrintStderr(config, 1, "Fetching chromosome sizes for `%s' from UCSC... ", config.UCSC)
    if g, err := ImportGenomeFromUCSC(config.UCSC); err != nil {
      PrintStderr(config, 1, "failed\n")
      log.Fatal(err)
    } else {
      genome = g
    }
    PrintStderr(config, 1, "done\n")
    return genome
  }
  PrintStderr(config, 1, "Reading chromosome sizes from `%s'... ", filename)
  if err := genome.ReadFile(filename); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")
  return genome
}

func bedToBigBed(config Config, filenameBed, filenameSizes, filenameOut string) {
  granges := importBed(config, filenameBed)
  genome  := importGenome(config, filenameSizes)

  parameters := DefaultBigBedParameters()
  parameters.BlockSize    = config.BlockSize
  parameters.ItemsPerSlot = config.ItemsPerSlot
  parameters.Compress     = !config.Uncompressed

  PrintStderr(config, 1, "Writing bigBed file `%s'... ", filenameOut)
  if err := granges.ExportBigBed(filenameOut, genome, parameters); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")
}

/* -------------------------------------------------------------------------- */

func main() {

  config  := Config{}

  options := getopt.New()

  optBlockSize    := options.    IntLong("block-size",     'b', 256, "items per index node [default: 256]")
  optItemsPerSlot := options.    IntLong("items-per-slot", 'i', 512, "records per data block [default: 512]")
  optUncompressed := options.   BoolLong("uncompressed",    0 ,      "do not compress data blocks")
  optUCSC         := options. StringLong("ucsc",            0 , "",  "fetch chromosome sizes for the given assembly from UCSC")
  optHelp         := options.   BoolLong("help",           'h',      "print help")
  optVerbose      := options.CounterLong("verbose",        'v',      "verbose level [-v or -vv]")

  options.SetParameters("<input.bed> [chrom.sizes] <output.bb>")
  options.Parse(os.Args)

  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  config.BlockSize    = *optBlockSize
  config.ItemsPerSlot = *optItemsPerSlot
  config.Uncompressed = *optUncompressed
  config.UCSC         = *optUCSC
  config.Verbose      = *optVerbose

  if config.UCSC != "" {
    if len(options.Args()) != 2 {
      options.PrintUsage(os.Stderr)
      os.Exit(1)
    }
    bedToBigBed(config, options.Args()[0], "", options.Args()[1])
  } else {
    if len(options.Args()) != 3 {
      options.PrintUsage(os.Stderr)
      os.Exit(1)
    }
    bedToBigBed(config, options.Args()[0], options.Args()[1], options.Args()[2])
  }
}
