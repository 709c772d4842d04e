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
import   "fmt"
import   "log"
import   "os"

import   "github.com/pborman/getopt"

import . "github.com/pbenner/bigbed"

/* -------------------------------------------------------------------------- */

type Config struct {
  Chrom   string
  Verbose int
}

/* -------------------------------------------------------------------------- */

func PrintStderr(config Config, level int, format string, args ...interface{}) {
  if config.Verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

func bigBedToBed(config Config, filenameIn, filenameOut string) {
  granges := GRanges{}
  PrintStderr(config, 1, "Reading bigBed file `%s'... ", filenameIn)
  if err := granges.ImportBigBed(filenameIn); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")

  if config.Chrom != "" {
    indices := []int{}
    for i := 0; i < granges.Length(); i++ {
      if granges.Seqnames[i] == config.Chrom {
        indices = append(indices, i)
      }
    }
    granges = granges.Subset(indices)
  }
  var w *bufio.Writer
  if filenameOut == "" {
    w = bufio.NewWriter(os.Stdout)
  } else {
    f, err := os.Create(filenameOut)
    if err != nil {
      log.Fatal(err)
    }
    defer f.Close()
    w = bufio.NewWriter(f)
  }
  defer w.Flush()

  if err := granges.WriteBed(w); err != nil {
    log.Fatal(err)
  }
}

/* -------------------------------------------------------------------------- */

func main() {

  config  := Config{}

  options := getopt.New()

  optChrom   := options. StringLong("chrom",    'c', "", "restrict output to the given chromosome")
  optHelp    := options.   BoolLong("help",     'h',     "print help")
  optVerbose := options.CounterLong("verbose",  'v',     "verbose level [-v or -vv]")

  options.SetParameters("<input.bb> [output.bed]")
  options.Parse(os.Args)

  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) != 1 && len(options.Args()) != 2 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  config.Chrom   = *optChrom
  config.Verbose = *optVerbose

  filenameOut := ""
  if len(options.Args()) == 2 {
    filenameOut = options.Args()[1]
  }
  bigBedToBed(config, options.Args()[0], filenameOut)
}
