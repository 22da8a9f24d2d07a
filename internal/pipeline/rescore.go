package pipeline

import (
	"github.com/nhle/mailscore/internal/model"
)

// Tier thresholds of a rescore report.
const (
	rescoreHigh   = 3
	rescoreMedium = 1
)

// RescoreStats summarizes the effect of re-running the scorer.
type RescoreStats struct {
	Total int

	// Changes counts messages by score delta.
	Changes map[int]int

	High, Medium, Low int

	MaxIncrease int
	MaxDecrease int
	TotalChange int
}

// Add folds o into s.
func (s *RescoreStats) Add(o RescoreStats) {
	if s.Changes == nil {
		s.Changes = make(map[int]int)
	}
	s.Total += o.Total
	for delta, n := range o.Changes {
		s.Changes[delta] += n
	}
	s.High += o.High
	s.Medium += o.Medium
	s.Low += o.Low
	s.MaxIncrease = max(s.MaxIncrease, o.MaxIncrease)
	s.MaxDecrease = min(s.MaxDecrease, o.MaxDecrease)
	s.TotalChange += o.TotalChange
}

// Rescore enriches every message in place and reports how the scores
// moved.
func (p *Processor) Rescore(msgs []model.Message) RescoreStats {
	stats := RescoreStats{Changes: make(map[int]int)}
	for i := range msgs {
		old := msgs[i].ImportanceScore
		p.Enrich(&msgs[i])
		score := msgs[i].ImportanceScore
		delta := score - old

		stats.Total++
		stats.Changes[delta]++
		stats.TotalChange += delta
		stats.MaxIncrease = max(stats.MaxIncrease, delta)
		stats.MaxDecrease = min(stats.MaxDecrease, delta)

		switch {
		case score >= rescoreHigh:
			stats.High++
		case score >= rescoreMedium:
			stats.Medium++
		default:
			stats.Low++
		}
	}
	return stats
}
