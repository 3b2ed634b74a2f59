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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/paudano/kanapy/kanapy/ikc"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query counts of k-mers in IKC files",
	Long: `Query counts of k-mers in IKC files

Positional arguments are sorted into inputs and queries: an argument
with the ".ikc" extension or naming a directory (scanned recursively
for ".ikc" files) is an input, everything else is a k-mer string.

More queries can be given with:
  1. -f/--kmer-file, one k-mer per line ("-" for stdin, plain or
     gzip/xz/zstd-compressed).
  2. -F/--fasta, FASTA/Q files whose sequences are broken into all
     k-mers of the file's k size. Windows covering non-ACGT bases are
     skipped. This mode cannot be mixed with k-mer string queries.

Output is TSV. Columns: file, kmer, count; with -F/--fasta: file,
seq_id, pos, kmer, count. K-mer positions (column pos) are 1-based.
A k-mer absent from the file has count 0; -H/--hits-only drops such
rows.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

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

		var err error

		// ---------------------------------------------------------------

		outFile := getFlagString(cmd, "out-file")
		kmerFiles := getFlagStringSlice(cmd, "kmer-file")
		fastaFiles := getFlagStringSlice(cmd, "fasta")
		hitsOnly := getFlagBool(cmd, "hits-only")

		// pick the IKC inputs out of the positional arguments,
		// everything left is a k-mer string
		ikcArgs := make([]string, 0, len(args))
		queries := make([]string, 0, len(args))
		for _, arg := range args {
			if isStdin(arg) {
				checkError(fmt.Errorf("reading IKC files from stdin is not supported"))
			}
			if strings.HasSuffix(arg, IKCFileExt) {
				ikcArgs = append(ikcArgs, arg)
				continue
			}

			path := expandPath(arg)
			isDir, err := pathutil.DirExists(path)
			checkError(errors.Wrap(err, path))
			if isDir {
				ikcArgs = append(ikcArgs, arg)
				continue
			}

			queries = append(queries, arg)
		}

		files := getIKCFiles(ikcArgs, opt.NumCPUs)

		for _, file := range kmerFiles {
			fh, err := xopen.Ropen(file)
			if err != nil {
				checkError(fmt.Errorf("failed to read k-mer file %s: %s", file, err))
			}

			scanner := bufio.NewScanner(fh)
			var line string
			for scanner.Scan() {
				line = strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r\n"))
				if line == "" {
					continue
				}
				queries = append(queries, line)
			}
			checkError(scanner.Err())
			checkError(fh.Close())
		}

		if len(fastaFiles) > 0 && len(queries) > 0 {
			checkError(fmt.Errorf("flag -F/--fasta cannot be mixed with k-mer string queries"))
		}
		if len(fastaFiles) == 0 && len(queries) == 0 {
			checkError(fmt.Errorf("no queries given, see positional arguments, -f/--kmer-file and -F/--fasta"))
		}

		if outputLog {
			log.Infof("kanapy v%s", VERSION)
			log.Infof("  %d input file(s) given", len(files))
			if len(queries) > 0 {
				log.Infof("  %d k-mer queries", len(queries))
			}
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

		if len(fastaFiles) > 0 {
			fmt.Fprintf(outfh, "file\tseq_id\tpos\tkmer\tcount\n")
		} else {
			fmt.Fprintf(outfh, "file\tkmer\tcount\n")
		}

		var total, hits uint64
		var count uint32
		for _, file := range files {
			r, err := ikc.Open(file)
			checkError(errors.Wrap(err, file))
			codec := r.Codec()

			var code uint64
			for _, query := range queries {
				code, err = codec.Encode(query)
				if err != nil {
					checkError(errors.Wrapf(err, "query %s against %s", query, file))
				}

				count, err = r.Get(code)
				checkError(err)

				total++
				if count > 0 {
					hits++
				} else if hitsOnly {
					continue
				}
				fmt.Fprintf(outfh, "%s\t%s\t%d\n", file, query, count)
			}

			var record *fastx.Record
			for _, qFile := range fastaFiles {
				fastxReader, err := fastx.NewReader(nil, qFile, "")
				checkError(errors.Wrap(err, qFile))

				for {
					record, err = fastxReader.Read()
					if err != nil {
						if err == io.EOF {
							break
						}
						checkError(err)
						break
					}

					stream := codec.Stream(record.Seq.Seq)
					for {
						code, pos, ok := stream.Next()
						if !ok {
							break
						}

						count, err = r.Get(code)
						checkError(err)

						total++
						if count > 0 {
							hits++
						} else if hitsOnly {
							continue
						}
						fmt.Fprintf(outfh, "%s\t%s\t%d\t%s\t%d\n",
							file, record.ID, pos+1, codec.Decode(code), count)
					}
				}
				fastxReader.Close()
			}

			checkError(r.Close())
		}

		if outputLog {
			log.Info()
			log.Infof("processed queries: %d, speed: %.3f queries per minute", total,
				float64(total)/time.Since(timeStart).Minutes())
			if total > 0 {
				log.Infof("%.4f%% (%d/%d) queries matched", float64(hits)/float64(total)*100, hits, total)
			}
			if outFile != "-" {
				log.Infof("query results saved to: %s", outFile)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	queryCmd.Flags().StringSliceP("kmer-file", "f", nil,
		formatFlagUsage(`File with one k-mer per line ("-" for stdin). Can be given multiple times.`))

	queryCmd.Flags().StringSliceP("fasta", "F", nil,
		formatFlagUsage(`Query with all k-mers of the sequences in FASTA/Q files. Can be given multiple times.`))

	queryCmd.Flags().BoolP("hits-only", "H", false,
		formatFlagUsage(`Do not print k-mers with count 0.`))

	queryCmd.SetUsageTemplate(usageTemplate("[flags] <ikc files/dirs> [k-mers...]"))
}
