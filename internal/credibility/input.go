package credibility

// Input is the article-like value the engine scores. Build it with NewInput.
type Input struct {
	Source    string
	Text      string
	Upvotes   int
	Downvotes int
	Attested  bool
}

// NewInput normalizes raw caller values; negative vote counts become zero.
func NewInput(source, text string, upvotes, downvotes int, attested bool) Input {
	return Input{
		Source:    source,
		Text:      text,
		Upvotes:   nonNegative(upvotes),
		Downvotes: nonNegative(downvotes),
		Attested:  attested,
	}
}

// SimpleInput mirrors the legacy wire contract where UserVotes is already a 0-100 favorability value.
type SimpleInput struct {
	Source    string
	Text      string
	UserVotes int
	Attested  bool
}

// Breakdown holds the five named sub-scores, each in [0,100].
type Breakdown struct {
	SourceReliability int `json:"sourceReliability"`
	FactualAccuracy   int `json:"factualAccuracy"`
	BiasLevel         int `json:"biasLevel"`
	UserVotes         int `json:"userVotes"`
	Attestation       int `json:"attestation"`
}

// Result is the facade output.
type Result struct {
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
