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
	"io"
	"os"
	"strings"
	"time"

	"github.com/paudano/kanapy/kanapy/ikc"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zeebo/wyhash"
)

// seed of the wyhash checksums reported by "kanapy info -c"
const checksumSeed = 1

type fileInfo struct {
	File       string `toml:"file"`
	ID         string `toml:"id"`
	Version    int8   `toml:"version"`
	K          int    `toml:"k_size"`
	KMin       int    `toml:"k_min_size"`
	KMinMask   uint32 `toml:"k_min_mask"`
	KmerBytes  int    `toml:"kmer_bytes"`
	RecordSize int    `toml:"record_size"`
	Records    uint64 `toml:"records"`
	Groups     int    `toml:"groups"`

	OffsetIndex uint64 `toml:"offset_index"`
	OffsetMeta  uint64 `toml:"offset_meta"`
	FileSize    uint64 `toml:"file_size"`

	ChecksumData  string `toml:"checksum_data,omitempty"`
	ChecksumIndex string `toml:"checksum_index,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print header and index summaries of IKC files",
	Long: `Print header and index summaries of IKC files

Input can be IKC files or directories, which are scanned recursively
for files with the ".ikc" extension.

The record count includes the records of the last minimizer group,
whose extent runs to the metadata offset.

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
		checksum := getFlagBool(cmd, "checksum")

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

		infos := make([]fileInfo, 0, len(files))
		for _, file := range files {
			r, err := ikc.Open(file)
			checkError(err)

			hd := r.Header()
			info := fileInfo{
				File:       file,
				ID:         hd.ID,
				Version:    hd.Version,
				K:          hd.KSize,
				KMin:       hd.KMinSize,
				KMinMask:   hd.KMinMask,
				KmerBytes:  r.RecordSize() - 4,
				RecordSize: r.RecordSize(),
				Records:    r.NumRecords(),
				Groups:     r.NumGroups(),

				OffsetIndex: hd.OffsetIndex,
				OffsetMeta:  hd.OffsetMeta,
				FileSize:    hd.OffsetEOF,
			}
			checkError(r.Close())

			if checksum {
				sumData, err := checksumRegion(file, hd.OffsetData, hd.OffsetIndex-hd.OffsetData)
				checkError(errors.Wrap(err, file))
				sumIndex, err := checksumRegion(file, hd.OffsetIndex, hd.OffsetMeta-hd.OffsetIndex)
				checkError(errors.Wrap(err, file))

				info.ChecksumData = fmt.Sprintf("%016x", sumData)
				info.ChecksumIndex = fmt.Sprintf("%016x", sumIndex)
			}

			infos = append(infos, info)
		}

		if toTOML {
			data, err := toml.Marshal(struct {
				Files []fileInfo `toml:"files"`
			}{infos})
			checkError(err)
			_, err = outfh.Write(data)
			checkError(err)
			return
		}

		fmt.Fprintf(outfh, "file\tid\tversion\tk_size\tk_min_size\tk_min_mask\tkmer_bytes\trecord_size\trecords\tgroups\toffset_index\toffset_meta\tfile_size")
		if checksum {
			fmt.Fprintf(outfh, "\tchecksum_data\tchecksum_index")
		}
		fmt.Fprintln(outfh)

		for _, info := range infos {
			fmt.Fprintf(outfh, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d",
				info.File, info.ID, info.Version, info.K, info.KMin, info.KMinMask,
				info.KmerBytes, info.RecordSize, info.Records, info.Groups,
				info.OffsetIndex, info.OffsetMeta, info.FileSize)
			if checksum {
				fmt.Fprintf(outfh, "\t%s\t%s", info.ChecksumData, info.ChecksumIndex)
			}
			fmt.Fprintln(outfh)
		}
	},
}

// checksumRegion digests length bytes of the file starting at offset.
func checksumRegion(file string, offset, length uint64) (uint64, error) {
	fh, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer fh.Close()

	h := wyhash.New(checksumSeed)
	if _, err = io.Copy(h, io.NewSectionReader(fh, int64(offset), int64(length))); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func init() {
	RootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports the ".gz" suffix ("-" for stdout).`))

	infoCmd.Flags().BoolP("to-toml", "t", false,
		formatFlagUsage(`Output the summaries as TOML instead of TSV.`))

	infoCmd.Flags().BoolP("checksum", "c", false,
		formatFlagUsage(`Compute wyhash checksums of the data and index sections.`))

	infoCmd.SetUsageTemplate(usageTemplate("[flags] <ikc files/dirs>"))
}
