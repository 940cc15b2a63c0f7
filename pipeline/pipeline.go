// Package pipeline implements the optional two-thread producer/consumer
// adapter of spec.md §4.8: a worker goroutine drives a gzip.Producer and
// sends its events across a bounded FIFO channel to the calling goroutine,
// which performs CRC32/ISIZE verification and writes decompressed bytes to
// an output sink.
package pipeline

import (
	"hash/crc32"
	"io"

	"github.com/coreos/gunzip/capnslog"
	"github.com/coreos/gunzip/gzip"
	"github.com/coreos/gunzip/stop"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/gunzip", "pipeline")

// DefaultQueueCapacity is the bounded channel size used when Run is called
// with capacity 0, chosen in the teacher's convention of a small positive
// constant rather than an unbounded channel.
const DefaultQueueCapacity = 16

// Run decompresses the events of p, writing decompressed bytes to w and
// verifying each member's trailer. When threaded is false, the calling
// goroutine drives p directly. When threaded is true, a worker goroutine
// drives p and delivers its events over a channel of the given capacity
// (DefaultQueueCapacity if capacity <= 0); exactly two goroutines run, and
// ordering is FIFO by construction.
func Run(p *gzip.Producer, w io.Writer, threaded bool, capacity int) error {
	if !threaded {
		return runInline(p, w)
	}
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return runThreaded(p, w, capacity)
}

// consumer holds the per-member running checksum state, shared between the
// inline and threaded paths.
type consumer struct {
	w       io.Writer
	digest  uint32
	nbytes  uint32
	started bool
}

func (c *consumer) handle(ev gzip.Event) error {
	switch ev.Kind {
	case gzip.EventHeader:
		c.digest = 0
		c.nbytes = 0
		c.started = true
	case gzip.EventData:
		c.digest = crc32.Update(c.digest, crc32.IEEETable, ev.Data)
		c.nbytes += uint32(len(ev.Data))
		if _, err := c.w.Write(ev.Data); err != nil {
			return err
		}
	case gzip.EventFooter:
		if ev.Footer.CRC32 != c.digest {
			err := &gzip.ChecksumMismatchError{Want: ev.Footer.CRC32, Got: c.digest}
			plog.Errorf("%v", err)
			return err
		}
		if ev.Footer.ISize != c.nbytes {
			err := &gzip.SizeMismatchError{Want: ev.Footer.ISize, Got: c.nbytes}
			plog.Errorf("%v", err)
			return err
		}
		c.digest = 0
		c.nbytes = 0
	case gzip.EventErr:
		plog.Errorf("producer failed: %v", ev.Err)
		return ev.Err
	}
	return nil
}

func runInline(p *gzip.Producer, w io.Writer) error {
	c := &consumer{w: w}
	for {
		ev, ok := p.Next()
		if !ok {
			return nil
		}
		if err := c.handle(ev); err != nil {
			return err
		}
	}
}

// runThreaded runs the producer on a dedicated worker goroutine, modeled
// as a stop.Stoppable so the consumer can tear it down if it returns early
// (e.g. on a verification error). Events cross exactly one bounded channel,
// so ordering is FIFO and there are exactly two goroutines in flight.
func runThreaded(p *gzip.Producer, w io.Writer, capacity int) error {
	events := make(chan gzip.Event, capacity)
	done := make(chan struct{})

	worker := &producerWorker{p: p, events: events, done: done}
	group := stop.NewGroup()
	group.Add(worker)
	go worker.run()

	defer group.Stop()

	c := &consumer{w: w}
	for ev := range events {
		if err := c.handle(ev); err != nil {
			return err
		}
		if ev.Kind == gzip.EventErr {
			return ev.Err
		}
	}
	return nil
}

// producerWorker drives p on its own goroutine and stops cleanly when told
// to, so a consumer that returns early (on a verification failure) cannot
// leave the worker blocked forever on a channel send.
type producerWorker struct {
	p      *gzip.Producer
	events chan gzip.Event
	done   chan struct{}
}

func (w *producerWorker) run() {
	defer close(w.events)
	for {
		ev, ok := w.p.Next()
		if !ok {
			return
		}
		select {
		case w.events <- ev:
		case <-w.done:
			return
		}
		if ev.Kind == gzip.EventErr {
			return
		}
	}
}

func (w *producerWorker) Stop() <-chan struct{} {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return stop.AlreadyDone
}
