package config

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Span is an inclusive range of durations written as "3s..7s". A single
// duration is a span of one value.
type Span struct {
	Min time.Duration
	Max time.Duration
}

// UnmarshalText parses "min..max" or a single duration
func (s *Span) UnmarshalText(text []byte) error {
	lo, hi, found := strings.Cut(string(text), "..")
	if !found {
		hi = lo
	}
	least, err := time.ParseDuration(strings.TrimSpace(lo))
	if err != nil {
		return fmt.Errorf("span %q: %w", text, err)
	}
	most, err := time.ParseDuration(strings.TrimSpace(hi))
	if err != nil {
		return fmt.Errorf("span %q: %w", text, err)
	}
	if most < least {
		return fmt.Errorf("span %q: max below min", text)
	}
	s.Min, s.Max = least, most
	return nil
}

// String renders the span the way it is parsed
func (s Span) String() string {
	return s.Min.String() + ".." + s.Max.String()
}

// Pick draws a duration uniformly from the span
func (s Span) Pick(rng *rand.Rand) time.Duration {
	if s.Max <= s.Min {
		return s.Min
	}
	return s.Min + time.Duration(rng.Int64N(int64(s.Max-s.Min)+1))
}

// Scaled divides both ends by f, leaving the span unchanged for f <= 0
func (s Span) Scaled(f float64) Span {
	if f <= 0 {
		return s
	}
	return Span{Min: time.Duration(float64(s.Min) / f), Max: time.Duration(float64(s.Max) / f)}
}

// Count is an inclusive integer range written as "2..4"
type Count struct {
	Min int
	Max int
}

// UnmarshalText parses "min..max" or a single integer
func (c *Count) UnmarshalText(text []byte) error {
	lo, hi, found := strings.Cut(string(text), "..")
	if !found {
		hi = lo
	}
	least, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return fmt.Errorf("count %q: %w", text, err)
	}
	most, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return fmt.Errorf("count %q: %w", text, err)
	}
	if most < least {
		return fmt.Errorf("count %q: max below min", text)
	}
	c.Min, c.Max = least, most
	return nil
}

// Pick draws an integer uniformly from the range
func (c Count) Pick(rng *rand.Rand) int {
	if c.Max <= c.Min {
		return c.Min
	}
	return c.Min + rng.IntN(c.Max-c.Min+1)
}
