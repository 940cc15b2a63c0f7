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

package progressutil

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type fakeWriter struct {
	received *bytes.Buffer
}

func (fw *fakeWriter) Write(p []byte) (int, error) {
	return fw.received.Write(p)
}

func TestCopyOneRunsToCompletion(t *testing.T) {
	cpp := NewCopyProgressPrinter()

	sampleData := bytes.Repeat([]byte("this is a test!"), 10)
	fr := bytes.NewReader(sampleData)
	fw := &fakeWriter{&bytes.Buffer{}}
	printTo := &bytes.Buffer{}

	if err := cpp.AddCopy(fr, "download", int64(len(sampleData)), fw); err != nil {
		t.Fatalf("AddCopy: %v", err)
	}

	if err := cpp.PrintAndWait(printTo, time.Millisecond*5, nil); err != nil {
		t.Fatalf("PrintAndWait: %v", err)
	}

	if !bytes.Equal(fw.received.Bytes(), sampleData) {
		t.Errorf("copied bytes don't match: got %d bytes, want %d", fw.received.Len(), len(sampleData))
	}
	if !strings.Contains(printTo.String(), "download") {
		t.Errorf("expected printed progress to mention the copy's label, got %q", printTo.String())
	}
}

func TestErrAlreadyStarted(t *testing.T) {
	cpp := NewCopyProgressPrinter()
	fr := bytes.NewReader(bytes.Repeat([]byte("x"), 64))
	fw := &fakeWriter{&bytes.Buffer{}}
	printTo := &bytes.Buffer{}

	if err := cpp.AddCopy(fr, "download", 64, fw); err != nil {
		t.Fatalf("AddCopy: %v", err)
	}

	cancel := make(chan struct{})
	doneChan := make(chan error)
	go func() {
		doneChan <- cpp.PrintAndWait(printTo, time.Second, cancel)
	}()

	// Give the goroutine a chance to start.
	time.Sleep(time.Millisecond * 50)

	if err := cpp.AddCopy(fr, "download", 64, fw); err != ErrAlreadyStarted {
		t.Errorf("AddCopy after start: got %v, want ErrAlreadyStarted", err)
	}

	if err := cpp.PrintAndWait(printTo, time.Second, cancel); err != ErrAlreadyStarted {
		t.Errorf("second PrintAndWait: got %v, want ErrAlreadyStarted", err)
	}

	close(cancel)

	if err := <-doneChan; err != nil {
		t.Errorf("PrintAndWait returned error: %v", err)
	}
}

func TestAddCopyRejectedAfterCompletion(t *testing.T) {
	cpp := NewCopyProgressPrinter()
	fr := bytes.NewReader(nil)
	fw := &fakeWriter{&bytes.Buffer{}}

	if err := cpp.AddCopy(fr, "empty", 0, fw); err != nil {
		t.Fatalf("AddCopy: %v", err)
	}
	if err := cpp.PrintAndWait(&bytes.Buffer{}, time.Millisecond, nil); err != nil {
		t.Fatalf("PrintAndWait: %v", err)
	}
	if err := cpp.AddCopy(fr, "late", 0, fw); err != ErrAlreadyStarted {
		t.Errorf("AddCopy after completion: got %v, want ErrAlreadyStarted", err)
	}
}

func TestByteUnitStr(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
	}
	for _, c := range cases {
		if got := ByteUnitStr(c.in); got != c.want {
			t.Errorf("ByteUnitStr(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRenderBarWithinWidth(t *testing.T) {
	bar := renderBar(80, "download", 0.5, "5 B / 10 B")
	if len(bar) > 80 {
		t.Errorf("rendered bar exceeds requested width: %d chars: %q", len(bar), bar)
	}
	if !strings.Contains(bar, "download") || !strings.Contains(bar, "5 B / 10 B") {
		t.Errorf("rendered bar missing label or size: %q", bar)
	}
}
