// Package gzip implements the RFC 1952 member framing around a DEFLATE
// payload: header and trailer parsing, and the event-emitting Producer
// state machine that drives a deflate.Decoder across member boundaries.
package gzip

import (
	"bytes"
	"time"

	"github.com/coreos/gunzip/deflate"
)

const (
	magic1 = 0x1f
	magic2 = 0x8b

	methodDeflate = 8

	flagText    = 1 << 0
	flagHdrCrc  = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
)

// Metadata is the parsed, validated content of a member's 10-byte header
// plus any optional fields FLG selects. Fields beyond what's needed to
// locate the payload are exposed for parity with the decompressor this one
// is descended from, even though spec.md only requires validation, not
// preservation.
type Metadata struct {
	ModTime time.Time
	OS      byte
	Name    string
	Comment string
}

// readHeader validates and consumes one member's fixed header plus any
// optional fields, per RFC 1952 and spec.md §6.
func readHeader(br *deflate.BitReader) (Metadata, error) {
	var fixed [10]byte
	if err := br.Read(fixed[:]); err != nil {
		return Metadata{}, err
	}
	if fixed[0] != magic1 || fixed[1] != magic2 {
		return Metadata{}, &InvalidGzHeaderError{Reason: "bad magic"}
	}
	if fixed[2] != methodDeflate {
		return Metadata{}, &InvalidGzHeaderError{Reason: "unsupported compression method"}
	}
	flg := fixed[3]
	if flg&0xe0 != 0 {
		return Metadata{}, &InvalidGzHeaderError{Reason: "reserved FLG bits set"}
	}
	mtime := uint32(fixed[4]) | uint32(fixed[5])<<8 | uint32(fixed[6])<<16 | uint32(fixed[7])<<24

	md := Metadata{
		ModTime: time.Unix(int64(mtime), 0),
		OS:      fixed[9],
	}

	if flg&flagExtra != 0 {
		var xlenBuf [2]byte
		if err := br.Read(xlenBuf[:]); err != nil {
			return Metadata{}, err
		}
		xlen := int(xlenBuf[0]) | int(xlenBuf[1])<<8
		extra := make([]byte, xlen)
		if err := br.Read(extra); err != nil {
			return Metadata{}, err
		}
	}
	if flg&flagName != 0 {
		var sink bytes.Buffer
		if err := br.ReadUntil(0, &sink); err != nil {
			return Metadata{}, err
		}
		md.Name = string(bytes.TrimSuffix(sink.Bytes(), []byte{0}))
	}
	if flg&flagComment != 0 {
		var sink bytes.Buffer
		if err := br.ReadUntil(0, &sink); err != nil {
			return Metadata{}, err
		}
		md.Comment = string(bytes.TrimSuffix(sink.Bytes(), []byte{0}))
	}
	if flg&flagHdrCrc != 0 {
		var crcBuf [2]byte
		if err := br.Read(crcBuf[:]); err != nil {
			return Metadata{}, err
		}
	}
	return md, nil
}
