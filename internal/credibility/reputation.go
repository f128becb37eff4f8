package credibility

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultReputation is returned for absent or unknown sources.
const DefaultReputation = 50

// ReputationTable maps normalized source keys to a baseline trust score.
// It is immutable once built and safe for concurrent reads.
type ReputationTable struct {
	version  string
	fallback int
	scores   map[string]int
}

// reputationFile is the on-disk layout of a versioned reputation mapping.
type reputationFile struct {
	Version string         `yaml:"version"`
	Default *int           `yaml:"default"`
	Sources map[string]int `yaml:"sources"`
}

// NewReputationTable copies scores, normalizing keys and clamping values to [0,100].
func NewReputationTable(scores map[string]int, fallback int) *ReputationTable {
	t := &ReputationTable{
		fallback: clamp(fallback),
		scores:   make(map[string]int, len(scores)),
	}
	for name, score := range scores {
		key := NormalizeSource(name)
		if key == "" {
			continue
		}
		t.scores[key] = clamp(score)
	}
	return t
}

// DefaultReputationTable returns the built-in publication mapping.
func DefaultReputationTable() *ReputationTable {
	t := NewReputationTable(map[string]int{
		"bbc":                     90,
		"reuters":                 90,
		"global news network":     90,
		"cnn":                     85,
		"guardian":                85,
		"theguardian":             85,
		"nytimes":                 85,
		"nyt":                     85,
		"techmed today":           85,
		"tech innovations weekly": 80,
		"energy today":            75,
		"randomblog":              40,
		"unknownsource":           30,
	}, DefaultReputation)
	t.version = "builtin"
	return t
}

// LoadReputationFile reads a YAML mapping such as:
//
//	version: "2024-05"
//	default: 50
//	sources:
//	  bbc: 90
func LoadReputationFile(path string) (*ReputationTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reputation file: %w", err)
	}
	return ParseReputation(raw)
}

// ParseReputation decodes the YAML reputation layout.
func ParseReputation(raw []byte) (*ReputationTable, error) {
	var file reputationFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse reputation file: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("reputation file has no sources")
	}

	fallback := DefaultReputation
	if file.Default != nil {
		fallback = *file.Default
	}

	t := NewReputationTable(file.Sources, fallback)
	t.version = file.Version
	return t, nil
}

// Version identifies the mapping revision the table was built from.
func (t *ReputationTable) Version() string {
	if t == nil {
		return ""
	}
	return t.version
}

// Default is the score used when no entry matches.
func (t *ReputationTable) Default() int {
	if t == nil {
		return DefaultReputation
	}
	return t.fallback
}

// WithDefault returns a copy of the table answering fallback for unknown sources.
func (t *ReputationTable) WithDefault(fallback int) *ReputationTable {
	c := &ReputationTable{fallback: clamp(fallback), scores: map[string]int{}}
	if t != nil {
		c.version = t.version
		c.scores = t.scores
	}
	return c
}

// Len reports the number of entries.
func (t *ReputationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.scores)
}

// Lookup resolves an identifier by its normalized key, then by the key without its TLD suffix.
// The returned key is the normalized form of the identifier.
func (t *ReputationTable) Lookup(identifier string) (key string, score int, ok bool) {
	key = NormalizeSource(identifier)
	if t == nil || key == "" {
		return key, 0, false
	}

	if score, ok := t.scores[key]; ok {
		return key, score, true
	}
	if alias := stripTLD(key); alias != key {
		if score, ok := t.scores[alias]; ok {
			return key, score, true
		}
	}
	return key, 0, false
}

// NormalizeSource turns a URL or publication name into a lookup key:
// the hostname for absolute URLs, otherwise the trimmed raw string; lowercased, leading "www." removed.
func NormalizeSource(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return ""
	}

	key := identifier
	if u, err := url.Parse(identifier); err == nil && u.Scheme != "" && u.Hostname() != "" {
		key = u.Hostname()
	}

	key = strings.ToLower(key)
	return strings.TrimPrefix(key, "www.")
}

func stripTLD(key string) string {
	idx := strings.LastIndex(key, ".")
	if idx <= 0 {
		return key
	}
	return key[:idx]
}
