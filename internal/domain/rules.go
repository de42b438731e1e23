package domain

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// RuleSet holds the keyword classes used to score a text segment. Terms are
// matched case-insensitively on word boundaries, so "rain" does not fire
// inside "train". Rule sets are data, not code: tests substitute minimal
// sets and deployments can load tuned ones from YAML.
type RuleSet struct {
	name      string
	scope     *termSet
	action    *termSet
	authority *termSet
	reason    *termSet
	ignore    *termSet
}

type termSet struct {
	terms   []string
	pattern *regexp.Regexp
}

func newTermSet(terms []string) (*termSet, error) {
	cleaned := make([]string, 0, len(terms))
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		cleaned = append(cleaned, t)
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(cleaned) == 0 {
		return &termSet{}, nil
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile term set: %w", err)
	}
	return &termSet{terms: cleaned, pattern: re}, nil
}

func (s *termSet) matches(text string) bool {
	return s.pattern != nil && s.pattern.MatchString(text)
}

// NewRuleSet builds a rule set from raw term lists.
func NewRuleSet(name string, scope, action, authority, reason, ignore []string) (*RuleSet, error) {
	rs := &RuleSet{name: name}
	var err error
	if rs.scope, err = newTermSet(scope); err != nil {
		return nil, err
	}
	if rs.action, err = newTermSet(action); err != nil {
		return nil, err
	}
	if rs.authority, err = newTermSet(authority); err != nil {
		return nil, err
	}
	if rs.reason, err = newTermSet(reason); err != nil {
		return nil, err
	}
	if rs.ignore, err = newTermSet(ignore); err != nil {
		return nil, err
	}
	return rs, nil
}

// Name returns the rule set's configured name.
func (r *RuleSet) Name() string { return r.name }

// HasScope reports whether text mentions a school/college scope term.
func (r *RuleSet) HasScope(text string) bool { return r.scope.matches(text) }

// HasAction reports whether text mentions a closure/holiday action term.
func (r *RuleSet) HasAction(text string) bool { return r.action.matches(text) }

// HasAuthority reports whether text mentions an authority term.
func (r *RuleSet) HasAuthority(text string) bool { return r.authority.matches(text) }

// HasReason reports whether text mentions a weather-reason term.
func (r *RuleSet) HasReason(text string) bool { return r.reason.matches(text) }

// Ignored reports whether text matches a negative pattern and must be
// rejected regardless of any positive score.
func (r *RuleSet) Ignored(text string) bool { return r.ignore.matches(text) }

// rulesDoc is the YAML shape of a rule set file.
type rulesDoc struct {
	RuleSets []struct {
		Name      string   `yaml:"name"`
		Scope     []string `yaml:"scope"`
		Action    []string `yaml:"action"`
		Authority []string `yaml:"authority"`
		Reason    []string `yaml:"reason"`
		Ignore    []string `yaml:"ignore"`
	} `yaml:"rulesets"`
}

//go:embed rules.yaml
var defaultRulesYAML []byte

var defaultRuleSets = sync.OnceValue(func() map[string]*RuleSet {
	sets, err := ParseRuleSets(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rule sets are invalid: %v", err))
	}
	return sets
})

// ParseRuleSets parses one or more named rule sets from YAML.
func ParseRuleSets(data []byte) (map[string]*RuleSet, error) {
	var doc rulesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule sets: %w", err)
	}
	if len(doc.RuleSets) == 0 {
		return nil, fmt.Errorf("parse rule sets: no rule sets defined")
	}

	sets := make(map[string]*RuleSet, len(doc.RuleSets))
	for _, raw := range doc.RuleSets {
		name := strings.ToLower(strings.TrimSpace(raw.Name))
		if name == "" {
			return nil, fmt.Errorf("parse rule sets: rule set with empty name")
		}
		if _, dup := sets[name]; dup {
			return nil, fmt.Errorf("parse rule sets: duplicate rule set %q", name)
		}
		rs, err := NewRuleSet(name, raw.Scope, raw.Action, raw.Authority, raw.Reason, raw.Ignore)
		if err != nil {
			return nil, err
		}
		sets[name] = rs
	}
	return sets, nil
}

// LoadRuleSets reads and parses a rule set YAML file.
func LoadRuleSets(path string) (map[string]*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule sets: %w", err)
	}
	return ParseRuleSets(data)
}

// RuleSetNamed returns the embedded rule set with the given name.
func RuleSetNamed(name string) (*RuleSet, bool) {
	rs, ok := defaultRuleSets()[strings.ToLower(strings.TrimSpace(name))]
	return rs, ok
}

// StrictRules returns the embedded strict rule set, the default for
// unfiltered sources such as broad RSS feeds.
func StrictRules() *RuleSet {
	rs, _ := RuleSetNamed("strict")
	return rs
}

// LenientRules returns the embedded lenient rule set, for sources whose
// query already pre-filters for holiday/weather terms.
func LenientRules() *RuleSet {
	rs, _ := RuleSetNamed("lenient")
	return rs
}
