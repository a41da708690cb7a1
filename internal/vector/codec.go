package vector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// componentDigits is the number of fractional digits each component keeps in
// text form. Components of a normalized 384-dim embedding sit well inside
// [-1, 1], so ten digits preserve them to ~5e-11.
const componentDigits = 10

// Format renders v in the one text form shared by the SQLite column encoding
// and the pgvector query literal: "[c1,c2,...]" with each component printed
// as fixed-point decimal. pgvector's parser rejects scientific notation, so
// near-zero components must render as 0.0000000000 rather than 1e-12.
func Format(v Vector) string {
	var b strings.Builder
	b.Grow(len(v)*(componentDigits+4) + 2)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatComponent(x))
	}
	b.WriteByte(']')
	return b.String()
}

// formatComponent prints one component, normalizing negative zero.
func formatComponent(x float64) string {
	s := strconv.FormatFloat(x, 'f', componentDigits, 64)
	if s == "-0.0000000000" {
		return s[1:]
	}
	return s
}

// Parse inverts Format. It also accepts pgvector's own output form, which
// puts a space after each comma.
func Parse(s string) (Vector, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("malformed vector text %s", describeText(s))
	}

	body := s[1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("empty vector text")
	}

	parts := strings.Split(body, ",")
	v := make(Vector, len(parts))
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing vector component %d: %w", i, err)
		}
		v[i] = x
	}
	return v, nil
}

// describeText keeps error messages readable when the input is a long blob.
func describeText(s string) string {
	if len(s) > 32 {
		return fmt.Sprintf("%q... (%d bytes)", s[:32], len(s))
	}
	return fmt.Sprintf("%q", s)
}
