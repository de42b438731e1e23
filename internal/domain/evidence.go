package domain

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Strength classifies how a segment qualified as evidence.
type Strength string

const (
	// StrengthStrong marks a segment that scored on scope, action, and
	// validator in its own right.
	StrengthStrong Strength = "strong"
	// StrengthContextual marks a segment that scored at least once while the
	// immediately preceding segment qualified, carrying topical momentum
	// across a sentence boundary.
	StrengthContextual Strength = "contextual"
)

const (
	minSegmentRunes = 15
	maxSnippetRunes = 250
	strongScore     = 3
)

// Evidence is one qualifying text snippet tying a place to a holiday or
// closure signal. Evidence is immutable: created during extraction, consumed
// once by fusion, never persisted on its own.
type Evidence struct {
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Headline    string    `json:"headline"`
	Snippet     string    `json:"snippet"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	Place       Place     `json:"place"`
	Scope       bool      `json:"scope"`
	Action      bool      `json:"action"`
	Authority   bool      `json:"authority"`
	Reason      bool      `json:"reason"`
	Strength    Strength  `json:"strength"`
}

// PageFetcher retrieves the readable text of a web page. Implementations are
// best-effort; the extractor works without one.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Extractor turns articles into evidence using a gazetteer and a rule set.
// Pass a nil fetcher to disable deep-fetch enrichment.
type Extractor struct {
	gaz     *Gazetteer
	rules   *RuleSet
	fetcher PageFetcher
	logger  *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(gaz *Gazetteer, rules *RuleSet, fetcher PageFetcher, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gaz: gaz, rules: rules, fetcher: fetcher, logger: logger}
}

// Extract scores an article's segments and emits evidence for every place a
// qualifying segment names. When the headline carries an action term but no
// known place appears anywhere in the article, the extractor deep-fetches
// the full page text once and retries; fetch failures degrade to the
// fetchless result.
func (e *Extractor) Extract(ctx context.Context, a Article) []Evidence {
	evidence := e.extractOnce(a)
	if len(evidence) > 0 || e.fetcher == nil {
		return evidence
	}
	if a.URL == "" || !e.rules.HasAction(a.Title) {
		return evidence
	}
	if len(e.gaz.Resolve(a.Title+"\n"+a.Body)) > 0 {
		return evidence
	}

	page, err := e.fetcher.FetchPage(ctx, a.URL)
	if err != nil {
		e.logger.Warn("deep fetch failed", "url", a.URL, "error", err)
		return evidence
	}
	if strings.TrimSpace(page) == "" {
		return evidence
	}

	enriched := a
	enriched.Body = strings.TrimSpace(a.Body + "\n" + page)
	return e.extractOnce(enriched)
}

// extractOnce runs the segment scoring pass over headline plus body.
func (e *Extractor) extractOnce(a Article) []Evidence {
	text := a.Title
	if strings.TrimSpace(a.Body) != "" {
		text = a.Title + "\n" + a.Body
	}

	var out []Evidence
	seen := make(map[string]bool) // url|place: one evidence per place per article
	prevQualified := false

	for _, seg := range splitSegments(text) {
		if e.rules.Ignored(seg) {
			prevQualified = false
			continue
		}

		scope := e.rules.HasScope(seg)
		action := e.rules.HasAction(seg)
		authority := e.rules.HasAuthority(seg)
		reason := e.rules.HasReason(seg)
		validator := authority || reason

		score := 0
		if scope {
			score++
		}
		if action {
			score++
		}
		if validator {
			score++
		}

		var strength Strength
		switch {
		case score >= strongScore && validator:
			strength = StrengthStrong
		case prevQualified && score >= 1:
			strength = StrengthContextual
		default:
			prevQualified = false
			continue
		}

		// Every emitted evidence needs its own place match; contextual
		// segments do not inherit the previous sentence's location.
		places := e.gaz.Resolve(seg)
		if len(places) == 0 {
			prevQualified = false
			continue
		}
		prevQualified = true

		for _, p := range places {
			key := a.URL + "|" + strings.ToLower(p.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Evidence{
				Source:      a.Source,
				URL:         a.URL,
				Headline:    a.Title,
				Snippet:     truncateRunes(seg, maxSnippetRunes),
				PublishedAt: a.PublishedAt,
				Place:       p,
				Scope:       scope,
				Action:      action,
				Authority:   authority,
				Reason:      reason,
				Strength:    strength,
			})
		}
	}
	return out
}

// segmentSplitPattern breaks text on sentence terminators and newlines.
var segmentSplitPattern = regexp.MustCompile(`[.!?\n]+`)

// splitSegments returns sentence-like segments of at least minSegmentRunes
// runes. Rune counting keeps the threshold meaningful for Tamil ticker text.
func splitSegments(text string) []string {
	parts := segmentSplitPattern.Split(text, -1)
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) >= minSegmentRunes {
			segs = append(segs, p)
		}
	}
	return segs
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
