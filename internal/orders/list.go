package orders

import (
	"strconv"
	"strings"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type ListQuery struct {
	Status Status
	Limit  int
}

// ParseListQuery reads the status filter and limit from query values. An
// empty status means no filter. The limit takes its leading integer, falls
// back to the default when there is none or it is zero, and is clamped to
// [1, MaxListLimit].
func ParseListQuery(status, limit string) (ListQuery, error) {
	q := ListQuery{Limit: clampLimit(leadingInt(limit))}
	if status != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return ListQuery{}, err
		}
		q.Status = st
	}
	return q, nil
}

func clampLimit(n int) int {
	if n == 0 {
		n = DefaultListLimit
	}
	return min(max(n, 1), MaxListLimit)
}

// leadingInt parses an optional sign followed by digits at the start of s,
// ignoring anything after them. It returns 0 when there are no digits.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// out of range; only the sign matters once clamped
		if s[0] == '-' {
			return -1
		}
		return MaxListLimit
	}
	return n
}
