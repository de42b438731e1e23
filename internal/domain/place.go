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

// PlaceKind distinguishes the levels of the place hierarchy.
type PlaceKind string

const (
	KindCity     PlaceKind = "city"
	KindDistrict PlaceKind = "district"
	KindState    PlaceKind = "state"
)

// Place is a named city, district, or state. State holds the parent state
// name for cities and districts and is empty for states themselves.
type Place struct {
	Name  string    `json:"name"`
	Kind  PlaceKind `json:"kind"`
	State string    `json:"state,omitempty"`
}

// gazetteerDoc is the YAML shape of a gazetteer file.
type gazetteerDoc struct {
	States []struct {
		Name      string   `yaml:"name"`
		Districts []string `yaml:"districts"`
	} `yaml:"states"`
	Cities []struct {
		Name  string `yaml:"name"`
		State string `yaml:"state"`
	} `yaml:"cities"`
}

type gazEntry struct {
	place   Place
	pattern *regexp.Regexp
}

// Gazetteer resolves free text to the set of known places it mentions.
// Entries keep their declaration order so resolution output is deterministic.
type Gazetteer struct {
	entries []gazEntry
	byName  map[string]Place // lowercase name -> place
}

//go:embed gazetteer.yaml
var defaultGazetteerYAML []byte

var defaultGazetteer = sync.OnceValue(func() *Gazetteer {
	g, err := ParseGazetteer(defaultGazetteerYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded gazetteer is invalid: %v", err))
	}
	return g
})

// DefaultGazetteer returns the embedded India gazetteer.
func DefaultGazetteer() *Gazetteer {
	return defaultGazetteer()
}

// LoadGazetteer reads and parses a gazetteer YAML file.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer: %w", err)
	}
	return ParseGazetteer(data)
}

// ParseGazetteer builds a Gazetteer from YAML. Every place name must be
// non-empty; districts inherit their state's name as parent.
func ParseGazetteer(data []byte) (*Gazetteer, error) {
	var doc gazetteerDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}

	g := &Gazetteer{byName: make(map[string]Place)}
	for _, st := range doc.States {
		if strings.TrimSpace(st.Name) == "" {
			return nil, fmt.Errorf("parse gazetteer: state with empty name")
		}
		if err := g.add(Place{Name: st.Name, Kind: KindState}); err != nil {
			return nil, err
		}
		for _, d := range st.Districts {
			if strings.TrimSpace(d) == "" {
				return nil, fmt.Errorf("parse gazetteer: empty district under %q", st.Name)
			}
			if err := g.add(Place{Name: d, Kind: KindDistrict, State: st.Name}); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range doc.Cities {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("parse gazetteer: city with empty name")
		}
		if err := g.add(Place{Name: c.Name, Kind: KindCity, State: c.State}); err != nil {
			return nil, err
		}
	}
	if len(g.entries) == 0 {
		return nil, fmt.Errorf("parse gazetteer: no places defined")
	}
	return g, nil
}

func (g *Gazetteer) add(p Place) error {
	key := strings.ToLower(p.Name)
	if _, dup := g.byName[key]; dup {
		return fmt.Errorf("parse gazetteer: duplicate place %q", p.Name)
	}
	g.byName[key] = p
	g.entries = append(g.entries, gazEntry{place: p, pattern: wordPattern(p.Name)})
	return nil
}

// wordPattern compiles a case-insensitive whole-word matcher for a place
// name, so "Chennai" does not match inside "Chennaikovil".
func wordPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
}

// Resolve returns the known places mentioned in text, in gazetteer order.
// A state-level match is dropped when the same text also matches one of
// that state's districts or cities: specificity wins, and a state-wide row
// would be noise next to a district-level one. No match returns nil.
func (g *Gazetteer) Resolve(text string) []Place {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var matched []Place
	childStates := make(map[string]bool) // parent states of matched sub-state places
	for _, e := range g.entries {
		if !e.pattern.MatchString(text) {
			continue
		}
		matched = append(matched, e.place)
		if e.place.Kind != KindState && e.place.State != "" {
			childStates[e.place.State] = true
		}
	}

	places := matched[:0]
	for _, p := range matched {
		if p.Kind == KindState && childStates[p.Name] {
			continue
		}
		places = append(places, p)
	}
	if len(places) == 0 {
		return nil
	}
	return places
}

// Lookup returns the place with the given name, matched case-insensitively.
func (g *Gazetteer) Lookup(name string) (Place, bool) {
	p, ok := g.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// StateOf returns the parent state for a known city or district, or an
// empty string when the place is unknown or is itself a state.
func (g *Gazetteer) StateOf(name string) string {
	p, ok := g.Lookup(name)
	if !ok {
		return ""
	}
	return p.State
}
