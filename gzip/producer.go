package gzip

import (
	"io"

	"github.com/coreos/gunzip/capnslog"
	"github.com/coreos/gunzip/deflate"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/gunzip", "gzip")

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	// EventHeader carries a freshly-validated member header.
	EventHeader EventKind = iota
	// EventData carries a chunk of decompressed output.
	EventData
	// EventFooter carries a validated (but not yet checksum-verified)
	// member trailer.
	EventFooter
	// EventErr carries a fatal error; the Producer is spent afterward.
	EventErr
)

// Event is the tagged value a Producer emits, per spec.md §3.
type Event struct {
	Kind   EventKind
	Header Metadata
	Data   []byte
	Footer Footer
	Err    error
}

type producerState int

const (
	stateHeader producerState = iota
	statePayload
	stateFooter
	stateEnd
)

// Producer is the member-boundary state machine of spec.md §4.7: it owns a
// deflate.BitReader, a deflate.SlidingWindow and a deflate.Decoder, reused
// across blocks within a member and across members within a multistream
// input, and drives them one event at a time.
type Producer struct {
	br  *deflate.BitReader
	win *deflate.SlidingWindow
	dec *deflate.Decoder

	state       producerState
	memberIdx   int
	multistream bool
	spent       bool
}

// NewProducer creates a Producer reading gzip members from r. Multistream
// decoding (concatenated members) is enabled by default, matching
// spec.md §1 ("all must be decoded in order").
func NewProducer(r io.Reader) *Producer {
	br := deflate.NewBitReader(r)
	win := deflate.NewSlidingWindow()
	return &Producer{
		br:          br,
		win:         win,
		dec:         deflate.NewDecoder(br, win),
		multistream: true,
	}
}

// DisableMultistream stops decoding after the first member, even if more
// bytes follow. Mirrors the teacher's gzip.Reader.Multistream(bool) toggle.
func (p *Producer) DisableMultistream() {
	p.multistream = false
}

// Next returns the next event, or false once the stream has cleanly ended
// (no more members, no error). Once an EventErr is returned, the Producer
// is spent: further calls also return false.
func (p *Producer) Next() (Event, bool) {
	if p.spent {
		return Event{}, false
	}
	switch p.state {
	case stateHeader:
		return p.stepHeader()
	case statePayload:
		return p.stepPayload()
	case stateFooter:
		return p.stepFooter()
	default:
		p.spent = true
		return Event{}, false
	}
}

func (p *Producer) fail(err error) (Event, bool) {
	plog.Errorf("member %d: %v", p.memberIdx, err)
	p.spent = true
	return Event{Kind: EventErr, Err: err}, true
}

func (p *Producer) stepHeader() (Event, bool) {
	if !p.br.HasDataLeft() {
		if p.memberIdx == 0 {
			return p.fail(&EmptyInputError{})
		}
		p.spent = true
		return Event{}, false
	}
	md, err := readHeader(p.br)
	if err != nil {
		return p.fail(err)
	}
	plog.Debugf("member %d: header %+v", p.memberIdx, md)
	p.dec.ResetMember()
	p.state = statePayload
	return Event{Kind: EventHeader, Header: md}, true
}

func (p *Producer) stepPayload() (Event, bool) {
	for {
		ev, err := p.dec.Next()
		if err != nil {
			return p.fail(err)
		}
		if ev.Done {
			p.state = stateFooter
		}
		if len(ev.Data) > 0 {
			// Copy out of the sliding window's backing array: the
			// producer does not retain references to emitted chunks,
			// and the window may overwrite this region on a later slide.
			out := make([]byte, len(ev.Data))
			copy(out, ev.Data)
			return Event{Kind: EventData, Data: out}, true
		}
		if ev.Done {
			return p.stepFooter()
		}
	}
}

func (p *Producer) stepFooter() (Event, bool) {
	ft, err := readFooter(p.br)
	if err != nil {
		return p.fail(err)
	}
	plog.Debugf("member %d: footer %+v", p.memberIdx, ft)
	p.memberIdx++
	if p.multistream {
		p.state = stateHeader
	} else {
		p.state = stateEnd
	}
	return Event{Kind: EventFooter, Footer: ft}, true
}
