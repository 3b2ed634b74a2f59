// Copyright © 2025-2026 Peter Audano
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/paudano/kanapy/kanapy/ikc"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts/sortutil"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"gonum.org/v1/gonum/stat"
)

type fileStats struct {
	File    string `toml:"file"`
	Records uint64 `toml:"records"`
	Groups  int    `toml:"groups"`

	CountMin   uint32  `toml:"count_min"`
	CountMax   uint32  `toml:"count_max"`
	CountMean  float64 `toml:"count_mean"`
	CountStdev float64 `toml:"count_stdev"`
	CountQ25   float64 `toml:"count_q25"`
	CountQ50   float64 `toml:"count_q50"`
	CountQ75   float64 `toml:"count_q75"`
	CountQ99   float64 `toml:"count_q99"`

	GroupSizeMean     float64 `toml:"group_size_mean"`
	GroupSizeMax      int     `toml:"group_size_max"`
	GroupMaxMinimizer uint32  `toml:"group_size_max_minimizer"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Scan IKC files and summarize the count distribution",
	Long: `Scan IKC files and summarize the count distribution

For every input file, one full scan collects all counts and reports
min/max/mean/standard deviation and the 25/50/75/99 percent quantiles,
plus the group size distribution from the index.

The scan covers every record the index reaches, including the tail of
the last group, which runs to the metadata offset.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}

		outputLog := opt.Verbose || opt.Log2File

		timeStart := time.Now()
		defer func() {
			if outputLog {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		// ---------------------------------------------------------------

		outFile := getFlagString(cmd, "out-file")
		toTOML := getFlagBool(cmd, "to-toml")

		files := getIKCFiles(args, opt.NumCPUs)
		if outputLog {
			log.Infof("kanapy v%s", VERSION)
			log.Infof("  %d input file(s) given", len(files))
		}

		// ---------------------------------------------------------------

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		allStats := make([]fileStats, 0, len(files))
		for _, file := range files {
			r, err := ikc.Open(file)
			checkError(errors.Wrap(err, file))

			st := fileStats{
				File:    file,
				Records: r.NumRecords(),
				Groups:  r.NumGroups(),
			}

			entries, err := r.IndexEntries()
			checkError(err)
			for m, g := range entries {
				if g.N > st.GroupSizeMax {
					st.GroupSizeMax = g.N
					st.GroupMaxMinimizer = m
				}
			}
			if st.Groups > 0 {
				st.GroupSizeMean = float64(st.Records) / float64(st.Groups)
			}

			// process bar
			showProgressBar := opt.Verbose && st.Records > 0
			var pbs *mpb.Progress
			var bar *mpb.Bar
			if showProgressBar {
				pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
				bar = pbs.AddBar(int64(st.Records),
					mpb.PrependDecorators(
						decor.Name("processed records: ", decor.WC{W: len("processed records: "), C: decor.DindentRight}),
						decor.Name("", decor.WCSyncSpaceR),
						decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
					),
					mpb.AppendDecorators(
						decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
						decor.EwmaETA(decor.ET_STYLE_GO, 3),
						decor.OnComplete(decor.Name(""), ". done"),
					),
				)
			}

			it, err := r.MinOrderIter()
			checkError(err)

			const chunkSize = 1 << 17

			counts := make([]float64, 0, st.Records)
			countMin := uint32(math.MaxUint32)
			var countMax uint32
			var scanned uint64
			chunkStart := time.Now()
			for it.Next() {
				rec := it.Record()

				scanned++
				if showProgressBar && scanned&(chunkSize-1) == 0 {
					bar.EwmaIncrBy(chunkSize, time.Since(chunkStart))
					chunkStart = time.Now()
				}

				if rec.Count < countMin {
					countMin = rec.Count
				}
				if rec.Count > countMax {
					countMax = rec.Count
				}
				counts = append(counts, float64(rec.Count))
			}
			checkError(it.Err())
			checkError(r.Close())

			if showProgressBar {
				bar.EwmaIncrBy(int(scanned&(chunkSize-1)), time.Since(chunkStart))
				pbs.Wait()
			}

			if len(counts) > 0 {
				st.CountMin = countMin
				st.CountMax = countMax
				st.CountMean = stat.Mean(counts, nil)
				if len(counts) > 1 {
					st.CountStdev = stat.StdDev(counts, nil)
				}

				sortutil.Float64s(counts)
				st.CountQ25 = stat.Quantile(0.25, stat.Empirical, counts, nil)
				st.CountQ50 = stat.Quantile(0.50, stat.Empirical, counts, nil)
				st.CountQ75 = stat.Quantile(0.75, stat.Empirical, counts, nil)
				st.CountQ99 = stat.Quantile(0.99, stat.Empirical, counts, nil)
			}

			allStats = append(allStats, st)
		}

		if toTOML {
			data, err := toml.Marshal(struct {
				Files []fileStats `toml:"files"`
			}{allStats})
			checkError(err)
			_, err = outfh.Write(data)
			checkError(err)
			return
		}

		fmt.Fprintf(outfh, "file\trecords\tgroups\tcount_min\tcount_max\tcount_mean\tcount_stdev\tcount_q25\tcount_q50\tcount_q75\tcount_q99\tgroup_size_mean\tgroup_size_max\tgroup_size_max_minimizer\n")
		for _, st := range allStats {
			fmt.Fprintf(outfh, "%s\t%d\t%d\t%d\t%d\t%.4f\t%.4f\t%.0f\t%.0f\t%.0f\t%.0f\t%.2f\t%d\t%d\n",
				st.File, st.Records, st.Groups, st.CountMin, st.CountMax,
				st.CountMean, st.CountStdev,
				st.CountQ25, st.CountQ50, st.CountQ75, st.CountQ99,
				st.GroupSizeMean, st.GroupSizeMax, st.GroupMaxMinimizer)
		}
	},
}

func init() {
	RootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	statsCmd.Flags().BoolP("to-toml", "t", false,
		formatFlagUsage(`Output the summaries as TOML instead of TSV.`))

	statsCmd.SetUsageTemplate(usageTemplate("[flags] <ikc files/dirs>"))
}
