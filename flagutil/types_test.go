package flagutil

import "testing"

func TestBoundedIntFlagSetInvalidArgument(t *testing.T) {
	tests := []string{
		"",
		"nope",
		"0",
		"65",
		"-1",
	}

	for i, tt := range tests {
		f := NewBoundedIntFlag(1, 64, 16)
		if err := f.Set(tt); err == nil {
			t.Errorf("case %d: expected non-nil error", i)
		}
	}
}

func TestBoundedIntFlagSetValidArgument(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1", 1},
		{"64", 64},
		{"32", 32},
	}

	for i, tt := range tests {
		f := NewBoundedIntFlag(1, 64, 16)
		if err := f.Set(tt.in); err != nil {
			t.Errorf("case %d: err=%v", i, err)
		}
		if f.Int() != tt.want {
			t.Errorf("case %d: got %d, want %d", i, f.Int(), tt.want)
		}
	}
}
