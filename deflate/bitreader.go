package deflate

import (
	"bytes"
	"io"
)

// bufSize is the byte buffer capacity behind the bit reader.
const bufSize = 16 * 1024

// BitReader is a buffered, bit-granular reader over an arbitrary io.Reader.
// Bits are consumed LSB-first within each byte, which is the order RFC 1951
// packs them in. A 32-bit accumulator is kept topped up so that a single
// call to Peek32 always exposes at least 24 usable bits, unless the
// underlying source is at (or near) end of stream.
type BitReader struct {
	r   io.Reader
	buf [bufSize]byte

	begin int // offset of next unread byte in buf
	cap   int // end of valid bytes in buf

	acc uint32 // bit accumulator, LSB-first
	nb  uint   // number of valid bits in acc
}

// NewBitReader wraps r for bit-granular reading.
func NewBitReader(r io.Reader) *BitReader {
	return &BitReader{r: r}
}

// refill compacts the unread tail of buf down to offset 0, then reads more
// bytes from the underlying source into the freed suffix. It returns the
// number of bytes now available to read, which may be fewer than requested
// and may be zero only at true end of stream.
func (b *BitReader) refill() (int, error) {
	if b.begin > 0 {
		n := copy(b.buf[:], b.buf[b.begin:b.cap])
		b.cap = n
		b.begin = 0
	}
	if b.cap == bufSize {
		return b.cap, nil
	}
	n, err := io.ReadAtLeast(b.r, b.buf[b.cap:], 1)
	b.cap += n
	if n > 0 {
		return b.cap - b.begin, nil
	}
	return b.cap - b.begin, err
}

// fillAcc pulls whole bytes from buf into acc until acc holds at least 24
// bits or the underlying source is exhausted. Running out of input is not
// itself an error: callers that need more bits than are actually available
// will fail at Consume/ReadBits time, which is how a truncated stream is
// reported.
func (b *BitReader) fillAcc() {
	for b.nb <= 24 {
		if b.begin == b.cap {
			if _, err := b.refill(); err != nil || b.begin == b.cap {
				return
			}
		}
		b.acc |= uint32(b.buf[b.begin]) << b.nb
		b.begin++
		b.nb += 8
	}
}

// Peek32 returns the next up-to-32 bits, LSB-aligned, without consuming
// them. At least 24 bits are guaranteed to be valid unless the underlying
// source is exhausted, in which case fewer bits (possibly zero) are valid;
// callers must not Consume more bits than are actually available.
func (b *BitReader) Peek32() uint32 {
	b.fillAcc()
	return b.acc
}

// avail reports how many valid bits Peek32 currently exposes.
func (b *BitReader) avail() uint {
	return b.nb
}

// Consume advances past n already-peeked bits. n may exceed the number of
// genuinely valid bits Peek32 last exposed: acc's unused high bits read as
// zero once the source is exhausted, and a Huffman decode against those
// zero bits can still match some code, returning a length longer than
// what's actually buffered. Consume reports io.ErrUnexpectedEOF in that
// case and leaves the reader's bit count unchanged rather than underflowing
// it.
func (b *BitReader) Consume(n uint) error {
	if n > b.nb {
		return io.ErrUnexpectedEOF
	}
	b.acc >>= n
	b.nb -= n
	return nil
}

// ReadBits reads and consumes the next n bits (n <= 24), returning them
// right-aligned. Returns io.ErrUnexpectedEOF if the stream ends before n
// bits are available.
func (b *BitReader) ReadBits(n uint) (uint32, error) {
	b.fillAcc()
	if b.nb < n {
		return 0, io.ErrUnexpectedEOF
	}
	v := b.acc & ((1 << n) - 1)
	if err := b.Consume(n); err != nil {
		return 0, err
	}
	return v, nil
}

// ByteAlign discards any partially-consumed bits so the next read starts on
// a byte boundary.
func (b *BitReader) ByteAlign() {
	drop := b.nb % 8
	b.acc >>= drop
	b.nb -= drop
}

// Read fills dst entirely from buffered bits (must be byte-aligned first)
// and, once the buffer is drained, directly from the underlying source.
func (b *BitReader) Read(dst []byte) error {
	if b.nb%8 != 0 {
		panic("deflate: read called without byte alignment")
	}
	// Drain whole bytes still sitting in the accumulator.
	for len(dst) > 0 && b.nb > 0 {
		dst[0] = byte(b.acc)
		b.acc >>= 8
		b.nb -= 8
		dst = dst[1:]
	}
	for len(dst) > 0 && b.begin < b.cap {
		n := copy(dst, b.buf[b.begin:b.cap])
		b.begin += n
		dst = dst[n:]
	}
	for len(dst) > 0 {
		n, err := io.ReadFull(b.r, dst)
		if n == len(dst) {
			return nil
		}
		if err != nil {
			return err
		}
		dst = dst[n:]
	}
	return nil
}

// ReadUntil scans for delim (after byte-aligning) and appends every byte up
// to and including the first match into sink, refilling from the
// underlying source as needed.
func (b *BitReader) ReadUntil(delim byte, sink *bytes.Buffer) error {
	b.ByteAlign()
	for b.nb > 0 {
		c := byte(b.acc)
		b.acc >>= 8
		b.nb -= 8
		sink.WriteByte(c)
		if c == delim {
			return nil
		}
	}
	for {
		if b.begin == b.cap {
			if _, err := b.refill(); err != nil && b.begin == b.cap {
				return err
			}
		}
		if b.begin == b.cap {
			return io.ErrUnexpectedEOF
		}
		c := b.buf[b.begin]
		b.begin++
		sink.WriteByte(c)
		if c == delim {
			return nil
		}
	}
}

// HasDataLeft reports whether any bits remain buffered or can be produced
// by a refill.
func (b *BitReader) HasDataLeft() bool {
	if b.nb > 0 || b.begin < b.cap {
		return true
	}
	n, _ := b.refill()
	return n > 0
}
