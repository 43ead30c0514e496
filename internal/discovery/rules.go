package discovery

import (
	_ "embed"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Weights are the scoring constants applied to each search result.
type Weights struct {
	DomainWord    int     `yaml:"domain_word"`
	DomainBase    int     `yaml:"domain_base"`
	DomainAffix   int     `yaml:"domain_affix"`
	DomainPartial int     `yaml:"domain_partial"`
	PartialRatio  float64 `yaml:"partial_ratio"`
	TitleToken    int     `yaml:"title_token"`
	CityTitle     int     `yaml:"city_title"`
	CitySnippet   int     `yaml:"city_snippet"`
	TLDPreferred  int     `yaml:"tld_preferred"`
	TLDAcceptable int     `yaml:"tld_acceptable"`
	FoodTitle     int     `yaml:"food_title"`
	FoodSnippet   int     `yaml:"food_snippet"`
	MinScore      int     `yaml:"min_score"`
}

// Rules is the data-driven part of website matching: blocklists, TLD
// preferences, keyword patterns and weights.
type Rules struct {
	SkipDomains     []string `yaml:"skip_domains"`
	GenericDomains  []string `yaml:"generic_domains"`
	PreferredTLDs   []string `yaml:"preferred_tlds"`
	AcceptableTLDs  []string `yaml:"acceptable_tlds"`
	SuspectTLDs     []string `yaml:"suspect_tlds"`
	NegativePattern string   `yaml:"negative_pattern"`
	FoodPattern     string   `yaml:"food_pattern"`
	StopWords       []string `yaml:"stop_words"`
	Weights         Weights  `yaml:"weights"`

	negative *regexp.Regexp
	food     *regexp.Regexp
	stop     map[string]bool
}

// DefaultRules returns the embedded rule set.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRulesYAML)
}

// LoadRules reads a rule file. An empty path selects the embedded rules.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: read rules %s", path)
	}
	return ParseRules(data)
}

// ParseRules decodes and compiles a YAML rule document.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "discovery: parse rules")
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) compile() error {
	var err error
	if r.NegativePattern != "" {
		if r.negative, err = regexp.Compile("(?i)" + strings.TrimSpace(r.NegativePattern)); err != nil {
			return eris.Wrap(err, "discovery: compile negative_pattern")
		}
	}
	if r.FoodPattern != "" {
		if r.food, err = regexp.Compile("(?i)" + strings.TrimSpace(r.FoodPattern)); err != nil {
			return eris.Wrap(err, "discovery: compile food_pattern")
		}
	}
	if r.Weights.MinScore <= 0 {
		return eris.New("discovery: weights.min_score must be positive")
	}
	r.stop = make(map[string]bool, len(r.StopWords))
	for _, w := range r.StopWords {
		r.stop[strings.ToLower(w)] = true
	}
	return nil
}

// Blocked reports whether domain, or any parent of it, is on a blocklist.
func (r *Rules) Blocked(domain string) bool {
	return matchesDomain(domain, r.SkipDomains) || matchesDomain(domain, r.GenericDomains)
}

func matchesDomain(domain string, list []string) bool {
	for _, d := range list {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

func (r *Rules) negativeMatch(domain string) bool {
	return r.negative != nil && r.negative.MatchString(domain)
}

func (r *Rules) foodMatch(s string) bool {
	return r.food != nil && r.food.MatchString(s)
}

func (r *Rules) tldScore(tld string) int {
	switch {
	case slices.Contains(r.PreferredTLDs, tld):
		return r.Weights.TLDPreferred
	case slices.Contains(r.AcceptableTLDs, tld):
		return r.Weights.TLDAcceptable
	}
	return 0
}

func (r *Rules) suspectTLD(tld string) bool {
	return slices.Contains(r.SuspectTLDs, tld)
}
