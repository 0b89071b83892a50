package matches

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"match-sync/core/utils"

	jsoniter "github.com/json-iterator/go"
)

// TBD is the sentinel the scraper uses for a score that is not known yet.
const TBD = "TBD"

// Score is a single side's score: a non-negative integer, TBD, or absent.
// The zero value is absent. A value that failed to parse during decoding is
// kept as invalid so that validation can drop the record instead of the whole
// export.
type Score struct {
	value   int
	set     bool
	tbd     bool
	invalid string
}

// IntScore returns a concrete score.
func IntScore(v int) Score {
	return Score{value: v, set: true}
}

// TBDScore returns the TBD sentinel.
func TBDScore() Score {
	return Score{tbd: true}
}

// IsSet reports a concrete integer score.
func (s Score) IsSet() bool {
	return s.set
}

// IsTBD reports the TBD sentinel.
func (s Score) IsTBD() bool {
	return s.tbd
}

// Invalid returns the raw text of a value that could not be parsed, or "".
func (s Score) Invalid() string {
	return s.invalid
}

// Value returns the integer score, 0 when not set.
func (s Score) Value() int {
	if !s.set {
		return 0
	}
	return s.value
}

// Ptr returns the score as a pointer, nil when not set.
func (s Score) Ptr() *int {
	if !s.set {
		return nil
	}
	v := s.value
	return &v
}

func (s Score) String() string {
	switch {
	case s.set:
		return strconv.Itoa(s.value)
	case s.tbd:
		return TBD
	case s.invalid != "":
		return s.invalid
	default:
		return "null"
	}
}

// MarshalJSON encodes a number, "TBD" or null.
func (s Score) MarshalJSON() ([]byte, error) {
	switch {
	case s.set:
		return []byte(strconv.Itoa(s.value)), nil
	case s.tbd:
		return []byte(`"` + TBD + `"`), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts numbers, numeric strings, "TBD" and null. Any other
// well-formed JSON value decodes to an invalid score.
func (s *Score) UnmarshalJSON(data []byte) error {
	var raw any
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	parsed, err := ParseScore(raw)
	if err != nil {
		*s = Score{invalid: string(data)}
		return nil
	}
	*s = parsed
	return nil
}

// ParseScore converts a loosely typed value into a Score.
func ParseScore(raw any) (Score, error) {
	switch v := raw.(type) {
	case nil:
		return Score{}, nil
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return Score{}, fmt.Errorf("score: invalid value %v", v)
		}
		return IntScore(utils.ToInt(v)), nil
	case int:
		if v < 0 {
			return Score{}, fmt.Errorf("score: invalid value %d", v)
		}
		return IntScore(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return Score{}, nil
		}
		if strings.EqualFold(trimmed, TBD) {
			return TBDScore(), nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < 0 {
			return Score{}, fmt.Errorf("score: invalid value %q", v)
		}
		return IntScore(n), nil
	default:
		return Score{}, fmt.Errorf("score: unsupported type %T", raw)
	}
}
