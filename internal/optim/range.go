package optim

import (
	"fmt"
	"strconv"
	"strings"
)

// Linspace returns n evenly spaced values from min to max inclusive.
func Linspace(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max
	return out
}

// ParseRange parses "min:max:count" or a single value.
func ParseRange(s string) ([]float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return []float64{v}, nil
	case 3:
		min, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range min %q: %w", parts[0], err)
		}
		max, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range max %q: %w", parts[1], err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid range count %q", parts[2])
		}
		return Linspace(min, max, n), nil
	default:
		return nil, fmt.Errorf("invalid range %q: want min:max:count", s)
	}
}
