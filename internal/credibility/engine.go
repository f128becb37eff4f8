// Package credibility converts raw article signals into a 0-100 trust score.
//
// The Engine is a pure, read-only facade: it performs no I/O, holds no mutable state and
// may be shared across goroutines. Tables are built once at startup (see LoadWeights and
// LoadReputationFile) and passed in through Options.
package credibility

// Options configures an Engine. Zero values fall back to the canonical defaults.
type Options struct {
	Reputation *ReputationTable
	Weights    *Weights
	Heuristics *Heuristics
}

// Engine is the single scoring entry point.
type Engine struct {
	reputation *ReputationTable
	weights    Weights
	heuristics Heuristics
}

// Analysis explains a Result with the heuristic rules that fired.
type Analysis struct {
	Result
	Band  Band     `json:"band"`
	Rules []string `json:"rules"`
	Notes []string `json:"notes"`
}

// SourceRating is the badge view of a single source lookup.
type SourceRating struct {
	Key   string `json:"source"`
	Score int    `json:"score"`
	Rated bool   `json:"rated"`
	Band  Band   `json:"band"`
}

// NewEngine builds an engine. Weight validation is the caller's job (LoadWeights).
func NewEngine(opts Options) *Engine {
	e := &Engine{
		reputation: opts.Reputation,
		weights:    DefaultWeights(),
		heuristics: DefaultHeuristics(),
	}
	if e.reputation == nil {
		e.reputation = DefaultReputationTable()
	}
	if opts.Weights != nil {
		e.weights = *opts.Weights
	}
	if opts.Heuristics != nil {
		e.heuristics = *opts.Heuristics
	}
	return e
}

// Weights returns the weight table in use.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Reputation returns the reputation table in use.
func (e *Engine) Reputation() *ReputationTable {
	return e.reputation
}

// ReliabilityOf resolves a source identifier to its reputation, or the table default.
func (e *Engine) ReliabilityOf(source string) int {
	if _, score, ok := e.reputation.Lookup(source); ok {
		return score
	}
	return e.reputation.Default()
}

// FactualAccuracyOf applies the additive keyword rules to text.
func (e *Engine) FactualAccuracyOf(text string) int {
	score, _ := factualAccuracy(e.heuristics, text)
	return score
}

// BiasLevelOf returns how biased text reads; higher is more biased.
func (e *Engine) BiasLevelOf(text string) int {
	bias, _ := biasLevel(e.heuristics, text)
	return bias
}

// Aggregate combines a breakdown into the overall score. Bias is inverted here and only here.
func (e *Engine) Aggregate(b Breakdown) int {
	w := e.weights
	sum := float64(b.SourceReliability)*w.SourceReliability +
		float64(b.FactualAccuracy)*w.FactualAccuracy +
		float64(100-b.BiasLevel)*w.BiasLevel +
		float64(b.UserVotes)*w.UserVotes +
		float64(b.Attestation)*w.Attestation
	return clamp(roundHalfUp(sum))
}

// Score runs every extractor and the aggregator over in.
func (e *Engine) Score(in Input) Result {
	return e.Analyze(in).Result
}

// ScoreSimple scores the legacy wire shape where UserVotes is already a 0-100 value.
func (e *Engine) ScoreSimple(in SimpleInput) Result {
	b := Breakdown{
		SourceReliability: e.ReliabilityOf(in.Source),
		FactualAccuracy:   e.FactualAccuracyOf(in.Text),
		BiasLevel:         e.BiasLevelOf(in.Text),
		UserVotes:         clamp(in.UserVotes),
		Attestation:       AttestationScoreOf(in.Attested),
	}
	return Result{Score: e.Aggregate(b), Breakdown: b}
}

// Analyze scores in and reports which rules contributed.
func (e *Engine) Analyze(in Input) Analysis {
	factual, factualRules := factualAccuracy(e.heuristics, in.Text)
	bias, biasRules := biasLevel(e.heuristics, in.Text)

	b := Breakdown{
		SourceReliability: e.ReliabilityOf(in.Source),
		FactualAccuracy:   factual,
		BiasLevel:         bias,
		UserVotes:         VoteScoreOf(in.Upvotes, in.Downvotes),
		Attestation:       AttestationScoreOf(in.Attested),
	}
	score := e.Aggregate(b)

	rules := make([]string, 0, len(factualRules)+len(biasRules))
	rules = append(rules, factualRules...)
	rules = append(rules, biasRules...)
	notes := make([]string, 0, len(rules))
	for _, r := range rules {
		notes = append(notes, NoteFor(r))
	}

	return Analysis{
		Result: Result{Score: score, Breakdown: b},
		Band:   BandOf(score),
		Rules:  rules,
		Notes:  notes,
	}
}

// SourceRating reports the lookup outcome for a badge; Rated is false when only the default applied.
func (e *Engine) SourceRating(source string) SourceRating {
	key, score, ok := e.reputation.Lookup(source)
	if !ok {
		return SourceRating{Key: key, Score: e.reputation.Default(), Band: BandUnrated}
	}
	return SourceRating{Key: key, Score: score, Rated: true, Band: SourceBandOf(score)}
}
