package archive

import (
	"strings"
	"sync"
	"unicode"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
)

// StubQueryExtractor is a minimal QueryEntityExtractor: it recognizes
// previously-registered canonical "Type:Value" entities inside free-form
// query text with a single Aho-Corasick automaton over their values,
// following the canonicalize-then-scan shape of a RuntimeDictionary-style
// matcher, simplified to this archive's entity model (no kinds, aliases,
// or auto-alias generation — only the canonical value itself is a surface
// form). It is a "stub" in that a real deployment may swap in an
// LLM-backed QueryEntityExtractor without changing the archive.
type StubQueryExtractor struct {
	mu                 sync.RWMutex
	automaton          *ahocorasick.Automaton
	patternToCanonical []string
	stop               *stopwords.Stopwords
}

// NewStubQueryExtractor builds an extractor over the given canonical
// entities. Entities with an empty value, or whose canonicalized value is
// made up entirely of stopwords, are skipped — they would otherwise match
// nearly every query.
func NewStubQueryExtractor(canonicalEntities []string) (*StubQueryExtractor, error) {
	e := &StubQueryExtractor{stop: stopwords.MustGet("en")}

	patterns := make([]string, 0, len(canonicalEntities))
	for _, canonical := range canonicalEntities {
		idx := strings.IndexByte(canonical, ':')
		if idx <= 0 || idx == len(canonical)-1 {
			continue
		}
		key := canonicalizeQueryText(canonical[idx+1:])
		if key == "" || e.isStopwordOnly(key) {
			continue
		}
		patterns = append(patterns, key)
		e.patternToCanonical = append(e.patternToCanonical, canonical)
	}

	if len(patterns) == 0 {
		return e, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	e.automaton = automaton
	return e, nil
}

func (e *StubQueryExtractor) isStopwordOnly(key string) bool {
	fields := strings.Fields(key)
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if !e.stop.Contains(f) {
			return false
		}
	}
	return true
}

// canonicalizeQueryText lowercases and collapses runs of separators to a
// single space, mirroring CanonicalizeForMatch's normalization without its
// byte-offset bookkeeping — this extractor only needs the matched
// canonical entity, not highlight spans into the original query.
func canonicalizeQueryText(s string) string {
	var b strings.Builder
	lastWasSpace := true
	for _, r := range s {
		c := unicode.ToLower(r)
		switch c {
		case '’', '‘':
			c = '\''
		case '–', '—':
			c = '-'
		}
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'' || c == '-' {
			b.WriteRune(c)
			lastWasSpace = false
		} else if !lastWasSpace {
			b.WriteRune(' ')
			lastWasSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// ExtractQueryEntities returns every registered canonical entity whose
// value appears in text, deduplicated, in first-match order.
func (e *StubQueryExtractor) ExtractQueryEntities(text string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.automaton == nil {
		return nil
	}

	haystack := []byte(canonicalizeQueryText(text))
	matches := e.automaton.FindAllOverlapping(haystack)

	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		canonical := e.patternToCanonical[m.PatternID]
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}
