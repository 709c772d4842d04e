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

import   "gonum.org/v1/plot"
import   "gonum.org/v1/plot/plotter"
import   "gonum.org/v1/plot/vg"

/* -------------------------------------------------------------------------- */

type Config struct {
  Bins    int
  Plot    string
  Verbose int
}

/* -------------------------------------------------------------------------- */

func PrintStderr(config Config, level int, format string, args ...interface{}) {
  if config.Verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

func saveHistogramPlot(config Config, filename string, lengths []float64) {
  values := make(plotter.Values, len(lengths))
  copy(values, lengths)

  p := plot.New()
  p.Title.Text   = ""
  p.X.Label.Text = "feature length"
  p.Y.Label.Text = "count"

  h, err := plotter.NewHist(values, config.Bins)
  if err != nil {
    log.Fatal(err)
  }
  p.Add(h)

  if err := p.Save(8*vg.Inch, 4*vg.Inch, filename); err != nil {
    log.Fatal(err)
  }
  PrintStderr(config, 1, "Wrote histogram plot to `%s'\n", filename)
}

func bigBedHistogram(config Config, filename string) {
  granges := GRanges{}
  PrintStderr(config, 1, "Reading bigBed file `%s'... ", filename)
  if err := granges.ImportBigBed(filename); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")

  lengths := make([]float64, granges.Length())
  min     := 0
  max     := 0
  for i := 0; i < granges.Length(); i++ {
    n := granges.Ranges[i].To - granges.Ranges[i].From
    lengths[i] = float64(n)
    if i == 0 || n < min {
      min = n
    }
    if i == 0 || n > max {
      max = n
    }
  }
  if config.Plot != "" {
    saveHistogramPlot(config, config.Plot, lengths)
    return
  }
  if len(lengths) == 0 {
    return
  }
  // print a text histogram
  counts  := make([]int, config.Bins)
  binsize := float64(max-min+1)/float64(config.Bins)
  for _, v := range lengths {
    idx := int((v - float64(min))/binsize)
    if idx >= config.Bins {
      idx = config.Bins-1
    }
    counts[idx]++
  }
  fmt.Printf("%15s\t%15s\n", "x", "y")
  for i := 0; i < config.Bins; i++ {
    fmt.Printf("%15e\t%15d\n", float64(min)+(float64(i)+0.5)*binsize, counts[i])
  }
}

/* -------------------------------------------------------------------------- */

func main() {

  config  := Config{}

  options := getopt.New()

  optBins    := options.    IntLong("bins",     'b', 100, "number of histogram bins")
  optPlot    := options. StringLong("plot",     'p', "",  "save histogram plot to the given file (pdf or png)")
  optHelp    := options.   BoolLong("help",     'h',      "print help")
  optVerbose := options.CounterLong("verbose",  'v',      "verbose level [-v or -vv]")

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
  config.Bins    = *optBins
  config.Plot    = *optPlot
  config.Verbose = *optVerbose

  bigBedHistogram(config, options.Args()[0])
}
