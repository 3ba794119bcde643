package metrics

// ScoredMSE is the mean squared cross-track error over the steps at or past
// warmup. With warmup N over a 2N-step run it equals the tuning cost.
type ScoredMSE struct {
	name    string
	warmup  int
	sum     float64
	samples int
}

func NewScoredMSE(warmup int) *ScoredMSE {
	return &ScoredMSE{
		name:   "scored_mse",
		warmup: warmup,
	}
}

func (s *ScoredMSE) Name() string { return s.name }

func (s *ScoredMSE) Observe(step int, cte, steering float64) {
	if step < s.warmup {
		return
	}
	s.sum += cte * cte
	s.samples++
}

func (s *ScoredMSE) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *ScoredMSE) Reset() {
	s.sum = 0
	s.samples = 0
}
