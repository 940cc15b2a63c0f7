// Copyright 2016 CoreOS Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command gunzip decompresses a gzip stream from stdin and writes the
// decompressed bytes to stdout, verifying each member's CRC32 and ISIZE
// trailer as it goes.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/coreos/gunzip/capnslog"
	"github.com/coreos/gunzip/flagutil"
	"github.com/coreos/gunzip/gzip"
	"github.com/coreos/gunzip/pipeline"
	"github.com/coreos/gunzip/progressutil"
	"github.com/coreos/gunzip/yamlutil"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/gunzip", "gunzip")

func usage(program string) {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", program)
	fmt.Fprintln(os.Stderr, "\tDecompresses a .gz stream read from stdin and writes it to stdout")
	fmt.Fprintf(os.Stderr, "Example: %s < input.gz > output\n", program)
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("gunzip", flag.ContinueOnError)
	fs.Usage = func() { usage(os.Args[0]) }

	threaded := fs.Bool("t", false, "decompress on a second goroutine, streaming events over a bounded channel")
	loglevel := fs.String("loglevel", "NOTICE", "log level: CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG, TRACE")
	logformat := fs.String("logformat", "string", "log formatter: string, glog, or journal")
	configPath := fs.String("config", "", "optional YAML file providing defaults for unset flags")
	progress := fs.Bool("progress", false, "report decompression progress against stdin's size (stdin must be a regular file)")
	queueCapacity := flagutil.NewBoundedIntFlag(1, 64, pipeline.DefaultQueueCapacity)
	fs.Var(queueCapacity, "queue-capacity", "threaded pipeline channel capacity, in [1, 64]")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		usage(os.Args[0])
		return 2
	}

	if *configPath != "" {
		raw, err := ioutil.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gunzip: reading config: %v\n", err)
			return 1
		}
		if err := yamlutil.SetFlagsFromYaml(fs, raw); err != nil {
			fmt.Fprintf(os.Stderr, "gunzip: applying config: %v\n", err)
			return 1
		}
	}

	if err := setupLogging(*loglevel, *logformat); err != nil {
		fmt.Fprintf(os.Stderr, "gunzip: %v\n", err)
		return 1
	}

	in, out := wrapProgress(os.Stdin, os.Stdout, *progress)

	producer := gzip.NewProducer(in)
	if err := pipeline.Run(producer, out, *threaded, queueCapacity.Int()); err != nil {
		plog.Errorf("decompression failed: %v", err)
		fmt.Fprintf(os.Stderr, "gunzip: %v\n", err)
		return 1
	}
	return 0
}

// setupLogging configures the repo-wide capnslog formatter and level from
// the CLI's -logformat and -loglevel flags.
func setupLogging(loglevel, logformat string) error {
	level, err := capnslog.ParseLevel(loglevel)
	if err != nil {
		return fmt.Errorf("invalid -loglevel %q: %v", loglevel, err)
	}

	var formatter capnslog.Formatter
	switch logformat {
	case "string":
		formatter = capnslog.NewStringFormatter(os.Stderr)
	case "glog":
		formatter = capnslog.NewGlogFormatter(os.Stderr)
	case "journal":
		formatter = capnslog.NewJournalFormatter()
	default:
		return fmt.Errorf("invalid -logformat %q", logformat)
	}
	capnslog.SetFormatter(formatter)
	capnslog.MustRepoLogger("github.com/coreos/gunzip").SetGlobalLogLevel(level)
	return nil
}

// wrapProgress wires a progressutil.CopyProgressPrinter between stdin and
// the producer's input when progress reporting is requested and stdin is a
// regular file, so its total size is known up front. When progress
// reporting isn't possible or wasn't requested, in and out are passed
// through unchanged.
func wrapProgress(stdin *os.File, stdout *os.File, progress bool) (io.Reader, io.Writer) {
	if !progress {
		return stdin, stdout
	}
	fi, err := stdin.Stat()
	if err != nil || fi.Mode()&os.ModeType != 0 {
		plog.Warningf("ignoring -progress: stdin is not a regular file")
		return stdin, stdout
	}

	cpp := progressutil.NewCopyProgressPrinter()
	pr, pw := io.Pipe()
	if err := cpp.AddCopy(stdin, "gunzip", fi.Size(), pw); err != nil {
		plog.Warningf("ignoring -progress: %v", err)
		return stdin, stdout
	}
	go func() {
		defer pw.Close()
		cpp.PrintAndWait(os.Stderr, 500*time.Millisecond, nil)
	}()
	return pr, stdout
}
