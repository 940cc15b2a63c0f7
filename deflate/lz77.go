package deflate

// CodeKind tags the variant carried by a Code value.
type CodeKind int

const (
	// Literal carries a single decoded byte.
	Literal CodeKind = iota
	// EndOfBlock signals the current block's code stream is exhausted.
	EndOfBlock
	// Dictionary carries an LZ77 back-reference.
	Dictionary
)

// Code is the LZ77 tagged value of spec.md §4.5: a literal byte, the
// end-of-block marker, or a back-reference.
type Code struct {
	Kind     CodeKind
	Literal  byte
	Distance int // 1..=32768, valid when Kind == Dictionary
	Length   int // 3..=258, valid when Kind == Dictionary
}

// lengthExtra maps length symbols 257..285 (indexed from 0) to their
// (extra bits, base length), per spec.md §6.
var lengthExtra = [29]struct{ extra, base int }{
	{0, 3}, {0, 4}, {0, 5}, {0, 6}, {0, 7}, {0, 8}, {0, 9}, {0, 10},
	{1, 11}, {1, 13}, {1, 15}, {1, 17},
	{2, 19}, {2, 23}, {2, 27}, {2, 31},
	{3, 35}, {3, 43}, {3, 51}, {3, 59},
	{4, 67}, {4, 83}, {4, 99}, {4, 115},
	{5, 131}, {5, 163}, {5, 195}, {5, 227},
	{0, 258},
}

// distanceExtra maps distance symbols 0..29 to their (extra bits, base
// distance), per spec.md §6.
var distanceExtra = [30]struct{ extra, base int }{
	{0, 1}, {0, 2}, {0, 3}, {0, 4},
	{1, 5}, {1, 7},
	{2, 9}, {2, 13},
	{3, 17}, {3, 25},
	{4, 33}, {4, 49},
	{5, 65}, {5, 97},
	{6, 129}, {6, 193},
	{7, 257}, {7, 385},
	{8, 513}, {8, 769},
	{9, 1025}, {9, 1537},
	{10, 2049}, {10, 3073},
	{11, 4097}, {11, 6145},
	{12, 8193}, {12, 12289},
	{13, 16385}, {13, 24577},
}

// expandResult is what one call into the LZ77 expander reports to its
// caller (the Inflate driver).
type expandResult int

const (
	// expandContinue means the code was applied and the block is not over.
	expandContinue expandResult = iota
	// expandDone means EndOfBlock was reached.
	expandDone
	// expandWindowFull means the write region has shrunk below a full
	// run and the caller must drain and slide before continuing.
	expandWindowFull
)

// expand applies a single Code to the window, per spec.md §4.5.
func expand(w *SlidingWindow, c Code) (expandResult, error) {
	if c.Kind == EndOfBlock {
		return expandDone, nil
	}
	switch c.Kind {
	case Literal:
		w.Put(c.Literal)
	case Dictionary:
		if err := w.CopyBack(c.Distance, c.Length); err != nil {
			return 0, err
		}
	}
	if w.Remaining() < maxLZ77Run {
		return expandWindowFull, nil
	}
	return expandContinue, nil
}
