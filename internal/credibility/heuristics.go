package credibility

import "strings"

// Rule names reported by Analyze. Each rule fires at most once per text.
const (
	RuleEvidence          = "evidence-language"
	RuleStrongSensational = "strong-sensational-language"
	RuleSensational       = "sensational-language"
	RuleOfficialConfirmed = "official-confirmation"
	RuleAttribution       = "attribution-language"
	RuleUnsourced         = "unsourced-claims"
	RuleOpinion           = "opinion-language"
	RuleNeutral           = "neutral-language"
)

var ruleNotes = map[string]string{
	RuleEvidence:          "Academic or data sources mentioned.",
	RuleStrongSensational: "Strongly sensational language detected.",
	RuleSensational:       "Sensational language detected.",
	RuleOfficialConfirmed: "Official confirmation language used.",
	RuleAttribution:       "Claims are attributed to named sources.",
	RuleUnsourced:         "Anonymous sources present.",
	RuleOpinion:           "Opinion language detected.",
	RuleNeutral:           "Neutral, data-oriented language detected.",
}

// NoteFor returns the human-readable explanation of a rule.
func NoteFor(rule string) string {
	return ruleNotes[rule]
}

var (
	evidenceMarkers          = []string{"study", "research", "report", "published", "survey", "data"}
	strongSensationalMarkers = []string{"shocking", "unbelievable", "you won't believe", "miracle"}
	sensationalMarkers       = []string{"breaking", "urgent"}
	officialMarkers          = []string{"confirmed", "verified", "official"}
	attributionMarkers       = []string{"according to", "said", "reported", "spokesperson"}
	unsourcedMarkers         = []string{"anonymous", "unnamed source"}
	opinionMarkers           = []string{"opinion", "i think", "we must", "should", "every", "always", "never"}
	neutralMarkers           = []string{"study", "data", "research", "according to"}
)

// Heuristics holds the tunable constants of the keyword extractors.
type Heuristics struct {
	Base              int `yaml:"base"`
	EvidenceBoost     int `yaml:"evidenceBoost"`
	StrongSensational int `yaml:"strongSensationalPenalty"`
	Sensational       int `yaml:"sensationalPenalty"`
	OfficialBoost     int `yaml:"officialBoost"`
	AttributionBoost  int `yaml:"attributionBoost"`
	UnsourcedPenalty  int `yaml:"unsourcedPenalty"`
	OpinionBias       int `yaml:"opinionBias"`
	NeutralBiasRelief int `yaml:"neutralBiasRelief"`
}

// DefaultHeuristics returns the canonical deltas. Penalties are stored as positive magnitudes.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Base:              50,
		EvidenceBoost:     15,
		StrongSensational: 20,
		Sensational:       10,
		OfficialBoost:     15,
		AttributionBoost:  10,
		UnsourcedPenalty:  15,
		OpinionBias:       20,
		NeutralBiasRelief: 15,
	}
}

func factualAccuracy(h Heuristics, text string) (int, []string) {
	score := h.Base
	if text == "" {
		return clamp(score), nil
	}

	t := strings.ToLower(text)
	var fired []string

	if containsAny(t, evidenceMarkers) {
		score += h.EvidenceBoost
		fired = append(fired, RuleEvidence)
	}

	switch {
	case containsAny(t, strongSensationalMarkers):
		score -= h.StrongSensational
		fired = append(fired, RuleStrongSensational)
	case containsAny(t, sensationalMarkers):
		score -= h.Sensational
		fired = append(fired, RuleSensational)
	}

	switch {
	case containsAny(t, officialMarkers):
		score += h.OfficialBoost
		fired = append(fired, RuleOfficialConfirmed)
	case containsAny(t, attributionMarkers):
		score += h.AttributionBoost
		fired = append(fired, RuleAttribution)
	}

	if containsAny(t, unsourcedMarkers) {
		score -= h.UnsourcedPenalty
		fired = append(fired, RuleUnsourced)
	}

	return clamp(score), fired
}

// biasLevel reports how biased the text reads; higher means more bias.
func biasLevel(h Heuristics, text string) (int, []string) {
	bias := h.Base
	if text == "" {
		return clamp(bias), nil
	}

	t := strings.ToLower(text)
	var fired []string

	if containsAny(t, opinionMarkers) {
		bias += h.OpinionBias
		fired = append(fired, RuleOpinion)
	}
	if containsAny(t, neutralMarkers) {
		bias -= h.NeutralBiasRelief
		fired = append(fired, RuleNeutral)
	}

	return clamp(bias), fired
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
