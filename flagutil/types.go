package flagutil

import (
	"fmt"
	"strconv"
)

// BoundedIntFlag is an int flag.Value that rejects values outside
// [Min, Max]. The zero value is invalid; use NewBoundedIntFlag.
type BoundedIntFlag struct {
	Min, Max int
	val      int
}

// NewBoundedIntFlag returns a BoundedIntFlag bounded to [min, max] and
// initialized to def, which must itself lie in that range.
func NewBoundedIntFlag(min, max, def int) *BoundedIntFlag {
	if def < min || def > max {
		panic(fmt.Sprintf("flagutil: default %d outside bound [%d, %d]", def, min, max))
	}
	return &BoundedIntFlag{Min: min, Max: max, val: def}
}

func (f *BoundedIntFlag) Int() int {
	return f.val
}

func (f *BoundedIntFlag) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("not an integer: %v", err)
	}
	if n < f.Min || n > f.Max {
		return fmt.Errorf("value %d outside bound [%d, %d]", n, f.Min, f.Max)
	}
	f.val = n
	return nil
}

func (f *BoundedIntFlag) String() string {
	return strconv.Itoa(f.val)
}
