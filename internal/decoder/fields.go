package decoder

import (
	"math"
	"strconv"
	"strings"
)

// fields reads typed values out of one split line.
type fields struct {
	values []string

	// degraded is set when an optional value failed to parse.
	degraded bool
}

// text returns the column value, empty when null.
func (f *fields) text(i int) string {
	v := f.values[i]
	if v == nullSentinel {
		return ""
	}
	return v
}

// key returns a required identifier column.
func (f *fields) key(i int) (string, error) {
	v := strings.TrimSpace(f.text(i))
	if v == "" {
		return "", errMalformed
	}
	return v, nil
}

// optionalInt parses an optional integer column. Unparseable values degrade to absent.
func (f *fields) optionalInt(i int) *int {
	v := strings.TrimSpace(f.text(i))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.degraded = true
		return nil
	}
	return &n
}

// flag parses a 0/1 column; anything other than "1" is false.
func (f *fields) flag(i int) bool {
	return strings.TrimSpace(f.values[i]) == "1"
}

// rating parses a required average rating.
func (f *fields) rating(i int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.text(i)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 10 {
		return 0, errMalformed
	}
	return v, nil
}

// count parses a required non-negative integer.
func (f *fields) count(i int) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(f.text(i)), 10, 64)
	if err != nil || v < 0 {
		return 0, errMalformed
	}
	return v, nil
}

// set splits a comma-separated column, dropping empty, null and repeated
// parts in first-seen order. A positive limit caps the result.
func (f *fields) set(i, limit int) []string {
	v := f.text(i)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == nullSentinel {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
