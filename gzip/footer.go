package gzip

import "github.com/coreos/gunzip/deflate"

// Footer is a member's 8-byte trailer: the CRC32 of the uncompressed data
// and the uncompressed size modulo 2^32, both little-endian.
type Footer struct {
	CRC32 uint32
	ISize uint32
}

// readFooter reads and decodes the 8-byte trailer. Validation against the
// running checksum/size happens on the consumer side (package pipeline),
// per spec.md §4.8.
func readFooter(br *deflate.BitReader) (Footer, error) {
	br.ByteAlign()
	var buf [8]byte
	if err := br.Read(buf[:]); err != nil {
		return Footer{}, err
	}
	return Footer{
		CRC32: get32(buf[0:4]),
		ISize: get32(buf[4:8]),
	}, nil
}

func get32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
