package credibility

// Band is a coarse label for displaying a score.
type Band string

const (
	BandHigh    Band = "high"
	BandMedium  Band = "medium"
	BandLow     Band = "low"
	BandUnrated Band = "unrated"
)

// BandOf labels an overall credibility score: high >= 70, medium >= 40.
func BandOf(score int) Band {
	switch {
	case score >= 70:
		return BandHigh
	case score >= 40:
		return BandMedium
	default:
		return BandLow
	}
}

// SourceBandOf labels a source reputation: high >= 80, medium >= 50.
func SourceBandOf(score int) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 50:
		return BandMedium
	default:
		return BandLow
	}
}
