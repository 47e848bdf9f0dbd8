package postgres

import (
	"fmt"
	"strconv"
	"strings"
)

// encodeVector renders a float32 slice in pgvector's literal format,
// e.g. "[0.1,0.2,0.3]". Values are bound as text and cast with ::vector at
// the SQL level.
func encodeVector(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, val := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(val), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// parseVector parses pgvector's text representation back into a float32
// slice.
func parseVector(s string) ([]float32, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, fmt.Errorf("malformed vector literal: %q", s)
	}

	inner := trimmed[1 : len(trimmed)-1]
	if inner == "" {
		return nil, nil
	}

	parts := strings.Split(inner, ",")
	values := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector element %d: %w", i, err)
		}
		values[i] = float32(f)
	}
	return values, nil
}
