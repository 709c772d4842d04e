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
import   "io"
import   "log"
import   "os"
import   "strconv"
import   "strings"

import   "github.com/pborman/getopt"

import . "github.com/pbenner/bigbed"
import . "github.com/pbenner/threadpool"

import   "github.com/pbenner/bigbed/lib/bufferedReadSeeker"
import   "github.com/pbenner/bigbed/lib/seekinghttp"

/* -------------------------------------------------------------------------- */

type Config struct {
  URL     bool
  Threads int
  Verbose int
}

/* -------------------------------------------------------------------------- */

func PrintStderr(config Config, level int, format string, args ...interface{}) {
  if config.Verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

func joinInts(values []int) string {
  fields := make([]string, len(values))
  for i, v := range values {
    fields[i] = strconv.Itoa(v)
  }
  return strings.Join(fields, ",")
}

/* -------------------------------------------------------------------------- */

// Parse a region of the form `chrom' or `chrom:from-to', where from
// and to are 1-based inclusive positions.
func parseRegion(str string) (string, int, int, error) {
  i := strings.LastIndex(str, ":")
  if i == -1 {
    return str, 1, -1, nil
  }
  fields := strings.SplitN(str[i+1:], "-", 2)
  if len(fields) != 2 {
    return "", 0, 0, fmt.Errorf("invalid region `%s'", str)
  }
  from, err := strconv.Atoi(fields[0])
  if err != nil {
    return "", 0, 0, fmt.Errorf("invalid region `%s'", str)
  }
  to, err := strconv.Atoi(fields[1])
  if err != nil {
    return "", 0, 0, fmt.Errorf("invalid region `%s'", str)
  }
  return str[0:i], from, to, nil
}

func openBigBed(config Config, filename string) (*BigBedReader, io.Closer, error) {
  if config.URL {
    reader, err := NewBigBedReader(seekinghttp.New(filename))
    if err != nil {
      return nil, nil, err
    }
    return reader, nil, nil
  }
  f, err := os.Open(filename)
  if err != nil {
    return nil, nil, err
  }
  brs, err := bufferedReadSeeker.New(f, 8192)
  if err != nil {
    f.Close()
    return nil, nil, err
  }
  reader, err := NewBigBedReader(brs)
  if err != nil {
    f.Close()
    return nil, nil, err
  }
  return reader, f, nil
}

/* -------------------------------------------------------------------------- */

func queryRegion(config Config, reader *BigBedReader, w io.Writer, region string) error {
  seqname, from, to, err := parseRegion(region)
  if err != nil {
    return err
  }
  if to == -1 {
    if length, err := reader.Genome.SeqLength(seqname); err != nil {
      return err
    } else {
      to = length
    }
  }
  for record := range reader.Query(seqname, from, to) {
    if record.Error != nil {
      return record.Error
    }
    fmt.Fprintf(w, "%s\t%d\t%d", record.Seqname, record.First-1, record.Last)
    if record.OptFields >= 1 {
      fmt.Fprintf(w, "\t%s", record.Name)
    }
    if record.OptFields >= 2 {
      fmt.Fprintf(w, "\t%d", record.Score)
    }
    if record.OptFields >= 3 {
      fmt.Fprintf(w, "\t%c", record.Strand)
    }
    if record.OptFields >= 4 {
      fmt.Fprintf(w, "\t%d", record.ThickFirst-1)
    }
    if record.OptFields >= 5 {
      fmt.Fprintf(w, "\t%d", record.ThickLast)
    }
    if record.OptFields >= 6 {
      fmt.Fprintf(w, "\t%s", record.ItemRgb)
    }
    if record.OptFields >= 7 {
      fmt.Fprintf(w, "\t%d", record.BlockCount)
    }
    if record.OptFields >= 8 {
      fmt.Fprintf(w, "\t%s", joinInts(record.BlockSizes))
    }
    if record.OptFields >= 9 {
      fmt.Fprintf(w, "\t%s", joinInts(record.BlockStarts))
    }
    fmt.Fprintf(w, "\n")
  }
  return nil
}

func bigBedQuery(config Config, filename string, regions []string) {
  if config.Threads <= 1 || len(regions) <= 1 {
    reader, closer, err := openBigBed(config, filename)
    if err != nil {
      log.Fatal(err)
    }
    if closer != nil {
      defer closer.Close()
    }
    w := bufio.NewWriter(os.Stdout)
    defer w.Flush()
    for _, region := range regions {
      if err := queryRegion(config, reader, w, region); err != nil {
        log.Fatal(err)
      }
    }
  } else {
    // readers cannot be shared across threads; each job opens its
    // own reader
    results := make([]string, len(regions))
    pool    := New(config.Threads, 100*config.Threads)
    g       := pool.NewJobGroup()

    if err := pool.AddRangeJob(0, len(regions), g, func(i int, pool ThreadPool, erf func() error) error {
      reader, closer, err := openBigBed(config, filename)
      if err != nil {
        return err
      }
      if closer != nil {
        defer closer.Close()
      }
      buffer := strings.Builder{}
      if err := queryRegion(config, reader, &buffer, regions[i]); err != nil {
        return err
      }
      results[i] = buffer.String()
      return nil
    }); err != nil {
      log.Fatal(err)
    }
    if err := pool.Wait(g); err != nil {
      log.Fatal(err)
    }
    w := bufio.NewWriter(os.Stdout)
    defer w.Flush()
    for i := 0; i < len(results); i++ {
      io.WriteString(w, results[i])
    }
  }
}

/* -------------------------------------------------------------------------- */

func main() {

  config  := Config{}

  options := getopt.New()

  optThreads := options.    IntLong("threads",  't', 1, "number of threads")
  optURL     := options.   BoolLong("url",       0 ,    "input is a remote file accessed over http")
  optHelp    := options.   BoolLong("help",     'h',    "print help")
  optVerbose := options.CounterLong("verbose",  'v',    "verbose level [-v or -vv]")

  options.SetParameters("<input.bb> <chrom[:from-to]>...")
  options.Parse(os.Args)

  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) < 2 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  config.Threads = *optThreads
  config.URL     = *optURL
  config.Verbose = *optVerbose

  bigBedQuery(config, options.Args()[0], options.Args()[1:])
}
