package deflate

import (
	"io"
)

// hclenOrder is the RFC 1951-prescribed permutation the HCLEN code-length
// values arrive in.
var hclenOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// BlockEvent is one chunk of output from Decoder.Next: a run of decoded
// bytes, and whether it was the last chunk of the member's final block.
type BlockEvent struct {
	Data []byte
	// Done is true exactly on the BlockEvent that completes the member's
	// final block (BFINAL was set). The caller should read the gzip
	// trailer next.
	Done bool
}

// Decoder drives the DEFLATE block state machine of spec.md §4.6: it reads
// one block at a time from a BitReader, building fixed or dynamic Huffman
// decoders as needed, and expands LZ77 codes into a SlidingWindow. Next
// returns one event per call, mirroring the Producer's pull-based shape.
type Decoder struct {
	br  *BitReader
	win *SlidingWindow

	fixedLL, fixedDist *HuffmanDecoder
	ll, dist           *HuffmanDecoder

	blockFinal bool // BFINAL of the block currently in progress

	storedRemaining int // bytes left to copy in a stored block

	step func(*Decoder) (BlockEvent, error)
	err  error
}

// NewDecoder creates a Decoder reading DEFLATE blocks from br and expanding
// into win. Both are owned by the caller (typically gzip.Producer) and may
// be shared across member boundaries.
func NewDecoder(br *BitReader, win *SlidingWindow) *Decoder {
	d := &Decoder{
		br:        br,
		win:       win,
		fixedLL:   NewHuffmanDecoder(FixedLitLenCodeBook),
		fixedDist: NewHuffmanDecoder(FixedDistCodeBook),
	}
	d.step = (*Decoder).readBlockHeader
	return d
}

// ResetMember prepares the decoder for a fresh member's payload. The
// BitReader is shared with the gzip header/footer parser and is not
// touched here; the window's history is cleared since back-references may
// not reach across a member boundary.
func (d *Decoder) ResetMember() {
	d.win.Reset()
	d.step = (*Decoder).readBlockHeader
	d.err = nil
}

// Next advances the state machine by one step and returns the resulting
// event, or an error if the stream is malformed.
func (d *Decoder) Next() (BlockEvent, error) {
	if d.err != nil {
		return BlockEvent{}, d.err
	}
	ev, err := d.step(d)
	if err != nil {
		d.err = err
	}
	return ev, err
}

func (d *Decoder) readBlockHeader() (BlockEvent, error) {
	final, err := d.br.ReadBits(1)
	if err != nil {
		return BlockEvent{}, err
	}
	btype, err := d.br.ReadBits(2)
	if err != nil {
		return BlockEvent{}, err
	}
	d.blockFinal = final == 1

	switch btype {
	case 0:
		return d.beginStoredBlock()
	case 1:
		d.ll, d.dist = d.fixedLL, d.fixedDist
		d.step = (*Decoder).huffmanBlock
		return d.huffmanBlock()
	case 2:
		ll, dist, err := d.readDynamicCodebooks()
		if err != nil {
			return BlockEvent{}, err
		}
		d.ll, d.dist = ll, dist
		d.step = (*Decoder).huffmanBlock
		return d.huffmanBlock()
	default:
		return BlockEvent{}, &InvalidBlockTypeError{}
	}
}

func (d *Decoder) beginStoredBlock() (BlockEvent, error) {
	d.br.ByteAlign()
	var lenBuf [4]byte
	if err := d.br.Read(lenBuf[:]); err != nil {
		return BlockEvent{}, err
	}
	length := uint16(lenBuf[0]) | uint16(lenBuf[1])<<8
	nlength := uint16(lenBuf[2]) | uint16(lenBuf[3])<<8
	if nlength != ^length {
		return BlockEvent{}, &BlockType0LenMismatchError{Len: length, NLen: nlength}
	}
	d.storedRemaining = int(length)
	d.step = (*Decoder).storedBlock
	return d.storedBlock()
}

func (d *Decoder) storedBlock() (BlockEvent, error) {
	for d.storedRemaining > 0 {
		room := d.win.Remaining()
		n := d.storedRemaining
		if n > room {
			n = room
		}
		if n > 0 {
			if err := d.br.Read(d.win.WriteRegionSlice(n)); err != nil {
				return BlockEvent{}, err
			}
			d.win.Advance(n)
			d.storedRemaining -= n
		}
		if d.win.Remaining() < maxLZ77Run {
			data := d.win.Drain()
			d.win.Slide()
			return BlockEvent{Data: data}, nil
		}
	}
	data := d.win.Drain()
	if d.blockFinal {
		d.step = (*Decoder).doneStep
		return BlockEvent{Data: data, Done: true}, nil
	}
	d.step = (*Decoder).readBlockHeader
	return BlockEvent{Data: data}, nil
}

func (d *Decoder) huffmanBlock() (BlockEvent, error) {
	for {
		code, err := d.readCode()
		if err != nil {
			return BlockEvent{}, err
		}
		result, err := expand(d.win, code)
		if err != nil {
			return BlockEvent{}, err
		}
		switch result {
		case expandWindowFull:
			data := d.win.Drain()
			d.win.Slide()
			return BlockEvent{Data: data}, nil
		case expandDone:
			data := d.win.Drain()
			if d.blockFinal {
				d.step = (*Decoder).doneStep
				return BlockEvent{Data: data, Done: true}, nil
			}
			d.step = (*Decoder).readBlockHeader
			return BlockEvent{Data: data}, nil
		}
	}
}

func (d *Decoder) doneStep() (BlockEvent, error) {
	return BlockEvent{}, io.EOF
}

// readCode decodes one LZ77 Code from the literal/length and distance
// alphabets, per spec.md §4.6.
func (d *Decoder) readCode() (Code, error) {
	bits := d.br.Peek32()
	sym, n, err := d.ll.decode(bits)
	if err != nil {
		return Code{}, err
	}
	if err := d.br.Consume(n); err != nil {
		return Code{}, err
	}

	if sym < 256 {
		return Code{Kind: Literal, Literal: byte(sym)}, nil
	}
	if sym == 256 {
		return Code{Kind: EndOfBlock}, nil
	}
	idx := sym - 257
	if idx >= len(lengthExtra) {
		return Code{}, &CodeNotFoundError{}
	}
	lx := lengthExtra[idx]
	extra, err := d.br.ReadBits(uint(lx.extra))
	if err != nil {
		return Code{}, err
	}
	length := lx.base + int(extra)

	bits = d.br.Peek32()
	dsym, dn, err := d.dist.decode(bits)
	if err != nil {
		return Code{}, err
	}
	if err := d.br.Consume(dn); err != nil {
		return Code{}, err
	}
	if dsym >= len(distanceExtra) {
		return Code{}, &CodeNotFoundError{}
	}
	dx := distanceExtra[dsym]
	dextra, err := d.br.ReadBits(uint(dx.extra))
	if err != nil {
		return Code{}, err
	}
	distance := dx.base + int(dextra)

	return Code{Kind: Dictionary, Distance: distance, Length: length}, nil
}

// readDynamicCodebooks reads the dynamic Huffman preamble (HLIT/HDIST/HCLEN
// plus the RLE-compressed code-length sequence) and builds the resulting
// literal/length and distance decoders, per spec.md §4.6.
func (d *Decoder) readDynamicCodebooks() (*HuffmanDecoder, *HuffmanDecoder, error) {
	hlitBits, err := d.br.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	hdistBits, err := d.br.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	hclenBits, err := d.br.ReadBits(4)
	if err != nil {
		return nil, nil, err
	}
	hlit := int(hlitBits) + 257
	hdist := int(hdistBits) + 1
	hclen := int(hclenBits) + 4

	var codeLenLens [19]int
	for i := 0; i < hclen; i++ {
		v, err := d.br.ReadBits(3)
		if err != nil {
			return nil, nil, err
		}
		codeLenLens[hclenOrder[i]] = int(v)
	}
	clBook, err := NewCodeBook(codeLenLens[:])
	if err != nil {
		return nil, nil, err
	}
	clDecoder := NewHuffmanDecoder(clBook)

	total := hlit + hdist
	lens := make([]int, 0, total)
	for len(lens) < total {
		bits := d.br.Peek32()
		sym, n, err := clDecoder.decode(bits)
		if err != nil {
			return nil, nil, err
		}
		if err := d.br.Consume(n); err != nil {
			return nil, nil, err
		}

		switch {
		case sym <= 15:
			lens = append(lens, sym)
		case sym == 16:
			if len(lens) == 0 {
				return nil, nil, &ReadDynamicCodebookError{Reason: "repeat code 16 with no previous length"}
			}
			extra, err := d.br.ReadBits(2)
			if err != nil {
				return nil, nil, err
			}
			last := lens[len(lens)-1]
			for i := 0; i < 3+int(extra); i++ {
				lens = append(lens, last)
			}
		case sym == 17:
			extra, err := d.br.ReadBits(3)
			if err != nil {
				return nil, nil, err
			}
			for i := 0; i < 3+int(extra); i++ {
				lens = append(lens, 0)
			}
		case sym == 18:
			extra, err := d.br.ReadBits(7)
			if err != nil {
				return nil, nil, err
			}
			for i := 0; i < 11+int(extra); i++ {
				lens = append(lens, 0)
			}
		default:
			return nil, nil, &ReadDynamicCodebookError{Reason: "invalid code length symbol"}
		}
		if len(lens) > total {
			return nil, nil, &ReadDynamicCodebookError{Reason: "code length sequence overshoots HLIT+HDIST"}
		}
	}

	llBook, err := NewCodeBook(lens[:hlit])
	if err != nil {
		return nil, nil, err
	}
	distBook, err := NewCodeBook(lens[hlit:])
	if err != nil {
		return nil, nil, err
	}
	return NewHuffmanDecoder(llBook), NewHuffmanDecoder(distBook), nil
}
