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
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// recordIter is the slice of the iterator API the dump loops need,
// satisfied by both iteration orders.
type recordIter interface {
	Next() bool
	Record() ikc.Record
	Err() error
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Dump the records of an IKC file as TSV",
	Long: `Dump the records of an IKC file as TSV

The default order is the on-disk one: groups by ascending minimizer,
and ascending k-mers within each group. -s/--sorted merges the groups
into one globally ascending k-mer stream instead.

-m/--minimizer restricts the dump to the k-mers of one minimizer
group.

The last group runs to the metadata offset, so its tail reflects the
bytes of the index section. Counts there are not produced by a k-mer
counter; be careful when aggregating over a full dump.

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
		sorted := getFlagBool(cmd, "sorted")
		hexKmer := getFlagBool(cmd, "hex")
		minimizer := getFlagInt(cmd, "minimizer")
		if int64(minimizer) > math.MaxUint32 {
			checkError(fmt.Errorf("value of flag -m/--minimizer (%d) does not fit 32 bits", minimizer))
		}

		files := getIKCFiles(args, opt.NumCPUs)
		if len(files) != 1 {
			checkError(fmt.Errorf("exactly one input file expected, %d given", len(files)))
		}
		file := files[0]

		if outputLog {
			log.Infof("kanapy v%s", VERSION)
			log.Infof("  dumping: %s", file)
		}

		// ---------------------------------------------------------------

		r, err := ikc.Open(file)
		checkError(errors.Wrap(err, file))
		defer func() {
			checkError(r.Close())
		}()
		codec := r.Codec()

		var filterGroup bool
		var groupMin uint32
		if minimizer >= 0 {
			filterGroup = true
			groupMin = uint32(minimizer)

			entries, err := r.IndexEntries()
			checkError(err)
			if _, ok := entries[groupMin]; !ok {
				log.Warningf("minimizer %d is not indexed in: %s", groupMin, file)
			}
		}

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		// process bar
		showProgressBar := opt.Verbose && outFile != "-" && r.NumRecords() > 0
		var pbs *mpb.Progress
		var bar *mpb.Bar
		if showProgressBar {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(r.NumRecords()),
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

		var it recordIter
		if sorted {
			it, err = r.KmerOrderIter()
		} else {
			it, err = r.MinOrderIter()
		}
		checkError(err)

		fmt.Fprintf(outfh, "kmer\tcount\n")

		const chunkSize = 1 << 17
		hexWidth := (r.RecordSize() - 4) * 2

		var scanned, dumped uint64
		chunkStart := time.Now()
		for it.Next() {
			rec := it.Record()

			scanned++
			if showProgressBar && scanned&(chunkSize-1) == 0 {
				bar.EwmaIncrBy(chunkSize, time.Since(chunkStart))
				chunkStart = time.Now()
			}

			if filterGroup && uint32(codec.MustMinimizer(rec.Kmer)) != groupMin {
				continue
			}

			if hexKmer {
				fmt.Fprintf(outfh, "%0*x\t%d\n", hexWidth, rec.Kmer, rec.Count)
			} else {
				fmt.Fprintf(outfh, "%s\t%d\n", codec.Decode(rec.Kmer), rec.Count)
			}
			dumped++
		}
		checkError(it.Err())

		if showProgressBar {
			bar.EwmaIncrBy(int(scanned&(chunkSize-1)), time.Since(chunkStart))
			pbs.Wait()
		}

		if outputLog {
			log.Info()
			log.Infof("dumped records: %d", dumped)
			if outFile != "-" {
				log.Infof("records saved to: %s", outFile)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	viewCmd.Flags().BoolP("sorted", "s", false,
		formatFlagUsage(`Dump in global k-mer order instead of the on-disk group order.`))

	viewCmd.Flags().BoolP("hex", "x", false,
		formatFlagUsage(`Print k-mers as hexadecimal codes instead of sequences.`))

	viewCmd.Flags().IntP("minimizer", "m", -1,
		formatFlagUsage(`Only dump the group of this minimizer. (-1 for all)`))

	viewCmd.SetUsageTemplate(usageTemplate("[flags] <ikc file>"))
}
