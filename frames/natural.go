package frames

import "math"

// NaturalKey extracts the numeric value of the first maximal run of decimal
// digits in name. A name without digits has key 0. Values too large for a
// uint64 saturate at math.MaxUint64.
//
// Only the first run counts: "a2b10" and "a2" both have key 2.
func NaturalKey(name string) uint64 {
	i := 0
	for i < len(name) && !isDigit(name[i]) {
		i++
	}
	var key uint64
	for ; i < len(name) && isDigit(name[i]); i++ {
		d := uint64(name[i] - '0')
		if key > (math.MaxUint64-d)/10 {
			key = math.MaxUint64
			for i < len(name) && isDigit(name[i]) {
				i++
			}
			break
		}
		key = key*10 + d
	}
	return key
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
