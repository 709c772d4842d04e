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
  genome, err := BigBedImportGenome(options.Args()[0])
  if err != nil {
    log.Fatal(err)
  }
  for i := 0; i < genome.Length(); i++ {
    fmt.Printf("%s\t%d\n", genome.Seqnames[i], genome.Lengths[i])
  }
}
