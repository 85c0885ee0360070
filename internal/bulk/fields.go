package bulk

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBlockSize is the small-field column width of a bulk data line
const DefaultBlockSize = 8

// SplitLine cuts a line into blockSize-wide columns, trimming each column.
// The line terminator is dropped.
func SplitLine(line string, blockSize int) []string {
	line = strings.TrimRight(line, "\r\n")
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	fields := make([]string, 0, len(line)/blockSize+1)
	for j := 0; j < len(line); j += blockSize {
		end := j + blockSize
		if end > len(line) {
			end = len(line)
		}
		fields = append(fields, strings.TrimSpace(line[j:end]))
	}
	return fields
}

// ParseFloat parses a bulk data real. Besides the usual forms it accepts the
// compressed exponent notation where the exponent letter is left out and the
// exponent sign follows the mantissa directly: "1.5-3" is 1.5e-3 and
// "-2.+4" is -2e+4. A blank field is zero.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(normalizeExponent(s), 64)
}

func normalizeExponent(s string) string {
	if strings.ContainsAny(s, "eEdD") {
		return strings.NewReplacer("d", "e", "D", "e").Replace(s)
	}
	// a sign past the first character can only be an exponent sign
	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		return s[:i] + "e" + s[i:]
	}
	return s
}

// isWeight reports whether a field holds real data rather than an id
func isWeight(s string) bool {
	return strings.Contains(s, ".")
}

// field returns column i or "" when the line is shorter
func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// FieldError reports a malformed column of a record
type FieldError struct {
	Line    int
	Keyword string
	Column  int
	Value   string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("line %d: %s column %d: invalid value %q: %v", e.Line, e.Keyword, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
