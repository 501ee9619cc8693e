package timeago

import (
	"errors"
	"math"
)

var errQuantityRange = errors.New("quantity out of range")

// numeral is a run of digits from a single numeral system.
type numeral struct {
	value int
	err   error
}

// numerals returns every digit run in s. A run stays within one system, so
// "5១" yields 5 and 1 rather than 51.
func (t *PatternTable) numerals(s string) []numeral {
	var (
		out    []numeral
		inRun  bool
		system int
		value  int
		err    error
	)
	for _, r := range s {
		d, sys, ok := t.digit(r)
		if !ok || (inRun && sys != system) {
			if inRun {
				out = append(out, numeral{value: value, err: err})
				inRun = false
			}
			if !ok {
				continue
			}
		}
		if !inRun {
			inRun, system, value, err = true, sys, 0, nil
		}
		if err == nil {
			if value > (math.MaxInt-d)/10 {
				err = errQuantityRange
			} else {
				value = value*10 + d
			}
		}
	}
	if inRun {
		out = append(out, numeral{value: value, err: err})
	}
	return out
}

// digit maps ASCII digits to system 0 and declared locale glyphs to system 1.
func (t *PatternTable) digit(r rune) (value, system int, ok bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), 0, true
	}
	if v, found := t.digitValue[r]; found {
		return v, 1, true
	}
	return 0, 0, false
}

func (t *PatternTable) firstNumber(s string) (int, bool, error) {
	nums := t.numerals(s)
	if len(nums) == 0 {
		return 0, false, nil
	}
	return nums[0].value, true, nums[0].err
}

func (t *PatternTable) lastNumber(s string) (int, bool, error) {
	nums := t.numerals(s)
	if len(nums) == 0 {
		return 0, false, nil
	}
	last := nums[len(nums)-1]
	return last.value, true, last.err
}
