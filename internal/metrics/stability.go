package metrics

import "math"

// Stability is the fraction of scored steps whose |cte| stays within
// threshold.
type Stability struct {
	name       string
	threshold  float64
	warmup     int
	violations int
	samples    int
}

func NewStability(threshold float64, warmup int) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
		warmup:    warmup,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(step int, cte, steering float64) {
	if step < s.warmup {
		return
	}
	s.samples++
	if math.Abs(cte) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxCTE is the largest |cte| seen at or past warmup.
type MaxCTE struct {
	name   string
	warmup int
	max    float64
}

func NewMaxCTE(warmup int) *MaxCTE {
	return &MaxCTE{name: "max_cte", warmup: warmup}
}

func (m *MaxCTE) Name() string { return m.name }

func (m *MaxCTE) Observe(step int, cte, steering float64) {
	if step < m.warmup {
		return
	}
	m.max = math.Max(m.max, math.Abs(cte))
}

func (m *MaxCTE) Value() float64 { return m.max }

func (m *MaxCTE) Reset() { m.max = 0 }
