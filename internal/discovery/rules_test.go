package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)

	assert.Contains(t, r.SkipDomains, "tripadvisor.at")
	assert.Contains(t, r.GenericDomains, "graz.gv.at")
	assert.Equal(t, 3, r.Weights.MinScore)
	assert.InDelta(t, 0.6, r.Weights.PartialRatio, 1e-9)
	assert.True(t, r.stop["café"])
}

func TestRules_Blocked(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)

	tests := []struct {
		domain string
		want   bool
	}{
		{"facebook.com", true},
		{"m.facebook.com", true},
		{"de.wikipedia.org", true},
		{"graz.gv.at", true},
		{"aiola.at", false},
		{"notfacebook.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Blocked(tt.domain))
		})
	}
}

func TestRules_Patterns(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)

	assert.True(t, r.negativeMatch("autohaus-graz.at"))
	assert.True(t, r.negativeMatch("GOOGLE.de"))
	assert.False(t, r.negativeMatch("aiola.at"))

	assert.True(t, r.foodMatch("speisekarte und öffnungszeiten"))
	assert.True(t, r.foodMatch("Wirtshaus in der Altstadt"))
	assert.False(t, r.foodMatch("used cars for sale"))
}

func TestRules_TLD(t *testing.T) {
	r, err := DefaultRules()
	require.NoError(t, err)

	assert.Equal(t, 2, r.tldScore("at"))
	assert.Equal(t, 2, r.tldScore("co.at"))
	assert.Equal(t, 1, r.tldScore("com"))
	assert.Equal(t, 0, r.tldScore("xyz"))
	assert.True(t, r.suspectTLD("ru"))
	assert.False(t, r.suspectTLD("at"))
}

func TestLoadRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `
skip_domains: [example.com]
preferred_tlds: [at]
stop_words: [Gasthaus]
weights:
  domain_word: 4
  min_score: 5
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.True(t, r.Blocked("shop.example.com"))
	assert.True(t, r.stop["gasthaus"], "stop words are lowercased")
	assert.Equal(t, 5, r.Weights.MinScore)
	assert.False(t, r.negativeMatch("anything"), "no pattern configured")
}

func TestLoadRules_EmptyPathUsesEmbedded(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.NotEmpty(t, r.SkipDomains)
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("negative_pattern: '(unclosed'\nweights: {min_score: 3}"))
	assert.ErrorContains(t, err, "negative_pattern")

	_, err = ParseRules([]byte("weights: {min_score: 0}"))
	assert.ErrorContains(t, err, "min_score")

	_, err = ParseRules([]byte("skip_domains: {bad"))
	assert.Error(t, err)
}
