package deflate

// maxCodeLen is the longest Huffman code length RFC 1951 permits.
const maxCodeLen = 15

// maxCodeBookLen bounds the length vector handed to NewCodeBook: 288
// literal/length symbols plus 1 spare, per spec.md's [1, 289] invariant.
const maxCodeBookLen = 289

// entry pairs a canonical Huffman code with its bit length. code == 0 when
// length == 0 (symbol unused).
type entry struct {
	code   uint16
	length uint8
}

// CodeBook is the canonical-Huffman assignment of RFC 1951 §3.2.2 for one
// alphabet: a code (MSB-first, as transmitted on the wire) and length per
// symbol, indexed by symbol value.
type CodeBook struct {
	entries []entry
}

// NewCodeBook builds canonical Huffman codes from a per-symbol length
// vector (0..=15, 0 meaning "symbol unused").
func NewCodeBook(lengths []int) (*CodeBook, error) {
	if len(lengths) == 0 || len(lengths) > maxCodeBookLen {
		return nil, &InvalidCodeLengthsError{Reason: "length vector must have 1 to 289 entries"}
	}
	var counts [maxCodeLen + 1]int
	for _, l := range lengths {
		if l < 0 || l > maxCodeLen {
			return nil, &InvalidCodeLengthsError{Reason: "length exceeds 15"}
		}
		counts[l]++
	}
	counts[0] = 0

	var nextCode [maxCodeLen + 2]uint16
	code := uint16(0)
	for l := 1; l <= maxCodeLen; l++ {
		code = (code + uint16(counts[l-1])) << 1
		nextCode[l] = code
	}

	cb := &CodeBook{entries: make([]entry, len(lengths))}
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		cb.entries[sym] = entry{code: nextCode[l], length: uint8(l)}
		nextCode[l]++
	}
	return cb, nil
}

// FixedLitLenCodeBook is the RFC 1951 §3.2.6 fixed literal/length alphabet:
// symbols 0-143 get length 8, 144-255 length 9, 256-279 length 7, 280-287
// length 8.
var FixedLitLenCodeBook = mustFixedLitLen()

// FixedDistCodeBook is the RFC 1951 fixed distance alphabet: all 30 symbols
// at length 5.
var FixedDistCodeBook = mustFixedDist()

func mustFixedLitLen() *CodeBook {
	lengths := make([]int, 288)
	for i := 0; i <= 143; i++ {
		lengths[i] = 8
	}
	for i := 144; i <= 255; i++ {
		lengths[i] = 9
	}
	for i := 256; i <= 279; i++ {
		lengths[i] = 7
	}
	for i := 280; i <= 287; i++ {
		lengths[i] = 8
	}
	cb, err := NewCodeBook(lengths)
	if err != nil {
		panic(err)
	}
	return cb
}

func mustFixedDist() *CodeBook {
	lengths := make([]int, 30)
	for i := range lengths {
		lengths[i] = 5
	}
	cb, err := NewCodeBook(lengths)
	if err != nil {
		panic(err)
	}
	return cb
}
