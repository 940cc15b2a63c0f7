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

// Package progressutil reports the progress of one or more io.Copy
// operations as a terminal progress bar.
package progressutil

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrAlreadyStarted is returned by AddCopy and PrintAndWait once printing
// has begun: no further copies may be registered, and PrintAndWait may
// only be called once.
var ErrAlreadyStarted = errors.New("progressutil: already started")

const defaultTermWidth = 80

type copyJob struct {
	label  string
	size   int64
	copied int64 // atomic
	done   chan struct{}
	err    error
}

// CopyProgressPrinter coordinates one or more background io.Copy
// operations and periodically renders their progress.
type CopyProgressPrinter struct {
	mu      sync.Mutex
	jobs    []*copyJob
	started bool
}

// NewCopyProgressPrinter returns an empty CopyProgressPrinter.
func NewCopyProgressPrinter() *CopyProgressPrinter {
	return &CopyProgressPrinter{}
}

// AddCopy registers a copy from r to w, labeled for display, with size
// the expected total number of bytes (used to compute percent complete;
// 0 or negative means unknown). The copy starts immediately in the
// background.
func (cpp *CopyProgressPrinter) AddCopy(r io.Reader, label string, size int64, w io.Writer) error {
	cpp.mu.Lock()
	if cpp.started {
		cpp.mu.Unlock()
		return ErrAlreadyStarted
	}
	job := &copyJob{label: label, size: size, done: make(chan struct{})}
	cpp.jobs = append(cpp.jobs, job)
	cpp.mu.Unlock()

	go func() {
		_, err := io.Copy(w, &countingReader{r: r, n: &job.copied})
		job.err = err
		close(job.done)
	}()
	return nil
}

// PrintAndWait renders all registered copies' progress to w every
// interval, until every copy finishes or cancel fires. Once every copy has
// finished it returns the first copy error, if any; on cancel it returns
// nil. It may be called at most once.
func (cpp *CopyProgressPrinter) PrintAndWait(w io.Writer, interval time.Duration, cancel <-chan struct{}) error {
	cpp.mu.Lock()
	if cpp.started {
		cpp.mu.Unlock()
		return ErrAlreadyStarted
	}
	cpp.started = true
	jobs := cpp.jobs
	cpp.mu.Unlock()

	allDone := make(chan struct{})
	go func() {
		for _, j := range jobs {
			<-j.done
		}
		close(allDone)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	linesPrinted := 0
	print := func() {
		var buf strings.Builder
		buf.WriteString(strings.Repeat("\033[1A", linesPrinted))
		for _, j := range jobs {
			copied := atomic.LoadInt64(&j.copied)
			var frac float64
			if j.size > 0 {
				frac = float64(copied) / float64(j.size)
			}
			sizeString := ByteUnitStr(copied) + " / " + ByteUnitStr(j.size)
			buf.WriteString(renderBar(defaultTermWidth, j.label, frac, sizeString))
			buf.WriteString("\n")
		}
		io.WriteString(w, buf.String())
		linesPrinted = len(jobs)
	}

	for {
		select {
		case <-cancel:
			return nil
		case <-allDone:
			print()
			for _, j := range jobs {
				if j.err != nil {
					return j.err
				}
			}
			return nil
		case <-ticker.C:
			print()
		}
	}
}

type countingReader struct {
	r io.Reader
	n *int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	atomic.AddInt64(c.n, int64(n))
	return n, err
}

// renderBar draws a single-line [label] [====>    ] size progress bar
// width columns wide.
func renderBar(width int, label string, frac float64, sizeString string) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	suffix := fmt.Sprintf(" %s", sizeString)
	barWidth := width - len(label) - len(suffix) - 3 // brackets + space
	if barWidth < 1 {
		barWidth = 1
	}
	filled := int(frac * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	var bar strings.Builder
	bar.WriteString(label)
	bar.WriteString(" [")
	bar.WriteString(strings.Repeat("=", filled))
	if filled < barWidth {
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", barWidth-filled-1))
	}
	bar.WriteString("]")
	bar.WriteString(suffix)
	return bar.String()
}

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// ByteUnitStr formats n bytes using the largest whole binary unit that
// keeps the mantissa readable, e.g. 1536 -> "1.5 KiB".
func ByteUnitStr(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	f := float64(n)
	unit := 0
	for f >= 1024 && unit < len(byteUnits)-1 {
		f /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", f, byteUnits[unit])
}
