package deflate

import "testing"

// TestNewCodeBookRFCExample reproduces the canonical-Huffman worked example
// from RFC 1951 §3.2.2: an 8-symbol alphabet with lengths (3,3,3,3,3,2,4,4)
// assigns codes 010,011,100,101,110,00,1110,1111 in symbol order.
func TestNewCodeBookRFCExample(t *testing.T) {
	lengths := []int{3, 3, 3, 3, 3, 2, 4, 4}
	cb, err := NewCodeBook(lengths)
	if err != nil {
		t.Fatalf("NewCodeBook: %v", err)
	}
	want := []struct{ code, length int }{
		{0b010, 3},
		{0b011, 3},
		{0b100, 3},
		{0b101, 3},
		{0b110, 3},
		{0b00, 2},
		{0b1110, 4},
		{0b1111, 4},
	}
	for sym, w := range want {
		e := cb.entries[sym]
		if int(e.code) != w.code || int(e.length) != w.length {
			t.Errorf("symbol %d: got code=%0*b length=%d, want code=%0*b length=%d",
				sym, e.length, e.code, e.length, w.length, w.code, w.length)
		}
	}
}

func TestNewCodeBookRejectsEmpty(t *testing.T) {
	if _, err := NewCodeBook(nil); err == nil {
		t.Fatal("expected error for empty length vector")
	}
}

func TestNewCodeBookRejectsTooLong(t *testing.T) {
	if _, err := NewCodeBook(make([]int, maxCodeBookLen+1)); err == nil {
		t.Fatal("expected error for length vector past 289 entries")
	}
}

func TestNewCodeBookRejectsLengthOver15(t *testing.T) {
	if _, err := NewCodeBook([]int{1, 16}); err == nil {
		t.Fatal("expected error for a length greater than 15")
	}
}

func TestFixedCodeBooksBuildWithoutPanicking(t *testing.T) {
	if len(FixedLitLenCodeBook.entries) != 288 {
		t.Errorf("FixedLitLenCodeBook has %d entries, want 288", len(FixedLitLenCodeBook.entries))
	}
	if len(FixedDistCodeBook.entries) != 30 {
		t.Errorf("FixedDistCodeBook has %d entries, want 30", len(FixedDistCodeBook.entries))
	}
	// Spot-check against RFC 1951 §3.2.6: literal 0 has the first 8-bit
	// fixed code, value 0b00110000.
	if FixedLitLenCodeBook.entries[0].length != 8 || FixedLitLenCodeBook.entries[0].code != 0b00110000 {
		t.Errorf("fixed literal 0 = %+v, want code=0b00110000 length=8", FixedLitLenCodeBook.entries[0])
	}
}
