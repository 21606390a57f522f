package diff

import (
	"fmt"
	"strings"
)

// unitSeconds maps duration unit letters to their length in seconds.
var unitSeconds = map[byte]int64{
	's': 1,
	'm': 60,
	'h': 3600,
	'd': 86400,
	'w': 604800,
}

// DurationSeconds converts a duration literal to a total number of
// seconds. The literal is a run of <integer><unit> tokens whose values
// are summed, so both the config form ("260w") and the form the server
// reports ("8760h0m0s") normalize to the same count. The sentinel
// "infinite" (or "inf") means "keep forever" and normalizes to 0,
// matching how the server reports an unlimited duration as 0s.
func DurationSeconds(s string) (int64, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if trimmed == "infinite" || trimmed == "inf" {
		return 0, nil
	}

	var total int64
	i := 0
	for i < len(trimmed) {
		start := i
		for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
			i++
		}
		if start == i {
			return 0, fmt.Errorf("invalid duration %q: expected digit at position %d", s, i)
		}
		if i == len(trimmed) {
			return 0, fmt.Errorf("invalid duration %q: missing unit", s)
		}

		var value int64
		for _, c := range []byte(trimmed[start:i]) {
			value = value*10 + int64(c-'0')
		}

		unit, ok := unitSeconds[trimmed[i]]
		if !ok {
			return 0, fmt.Errorf("invalid duration %q: unknown unit %q", s, trimmed[i])
		}
		i++

		total += value * unit
	}

	return total, nil
}
