/* Copyright (C) 2017 Philipp Benner
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

import "database/sql"
import "fmt"

import _ "github.com/go-sql-driver/mysql"

/* import chromosome sizes from ucsc
 * -------------------------------------------------------------------------- */

// Import chromosome sizes for the given assembly (e.g. hg19, mm10)
// from the UCSC public MySQL server. The chromInfo table lists every
// chromosome together with its length in bases.
func ImportGenomeFromUCSC(assembly string) (Genome, error) {
  genome := Genome{}
  /* variables for storing a single database row */
  var i_seqname string
  var i_length  int

  seqnames := []string{}
  lengths  := []int{}

  /* open connection */
  db, err := sql.Open("mysql",
    fmt.Sprintf("genome@tcp(genome-mysql.cse.ucsc.edu:3306)/%s", assembly))
  if err != nil {
    return genome, err
  }
  defer db.Close()

  err = db.Ping()
  if err != nil {
    return genome, err
  }

  /* receive data */
  rows, err := db.Query("SELECT chrom, size FROM chromInfo")
  if err != nil {
    return genome, err
  }
  defer rows.Close()
  for rows.Next() {
    err := rows.Scan(&i_seqname, &i_length)
    if err != nil {
      return genome, err
    }
    seqnames = append(seqnames, i_seqname)
    lengths  = append(lengths,  i_length)
  }
  return NewGenome(seqnames, lengths), nil
}
