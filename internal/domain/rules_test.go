package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleSet(t *testing.T) {
	rs, err := NewRuleSet("test",
		[]string{"school", "College"},
		[]string{"closed"},
		[]string{"collector"},
		[]string{"rain"},
		[]string{"reopen"},
	)
	require.NoError(t, err)

	t.Run("scope", func(t *testing.T) {
		assert.True(t, rs.HasScope("all schools are affected"))
		assert.True(t, rs.HasScope("the COLLEGE shut its gates"))
		assert.False(t, rs.HasScope("the office remains open"))
	})

	t.Run("word boundaries", func(t *testing.T) {
		assert.True(t, rs.HasReason("heavy rain expected"))
		assert.False(t, rs.HasReason("the train was delayed"))
		assert.False(t, rs.HasReason("rainbow over the city"))
	})

	t.Run("ignore", func(t *testing.T) {
		assert.True(t, rs.Ignored("schools reopen on Monday"))
		assert.False(t, rs.Ignored("schools closed on Monday"))
	})

	t.Run("empty term lists never match", func(t *testing.T) {
		empty, err := NewRuleSet("empty", nil, nil, nil, nil, nil)
		require.NoError(t, err)
		assert.False(t, empty.HasScope("school closed"))
		assert.False(t, empty.Ignored("anything"))
	})

	t.Run("blank terms dropped", func(t *testing.T) {
		rs, err := NewRuleSet("blanks", []string{"  ", "", "school"}, nil, nil, nil, nil)
		require.NoError(t, err)
		assert.True(t, rs.HasScope("school"))
	})
}

func TestEmbeddedRuleSets(t *testing.T) {
	t.Run("strict", func(t *testing.T) {
		rs := StrictRules()
		require.NotNil(t, rs)
		assert.Equal(t, "strict", rs.Name())

		assert.True(t, rs.HasScope("schools and colleges"))
		assert.True(t, rs.HasAction("holiday declared"))
		assert.True(t, rs.HasAuthority("the district collector said"))
		assert.True(t, rs.HasReason("red alert for heavy rainfall"))
		assert.True(t, rs.Ignored("classes shift to online mode"))
		assert.True(t, rs.Ignored("bus services resume"))
	})

	t.Run("lenient", func(t *testing.T) {
		rs := LenientRules()
		require.NotNil(t, rs)
		assert.Equal(t, "lenient", rs.Name())

		// Lenient keeps transport noise that strict rejects.
		assert.False(t, rs.Ignored("bus services disrupted"))
		assert.True(t, rs.Ignored("schools reopen today"))
	})

	t.Run("lookup by name", func(t *testing.T) {
		rs, ok := RuleSetNamed("  STRICT ")
		require.True(t, ok)
		assert.Equal(t, "strict", rs.Name())

		_, ok = RuleSetNamed("nonexistent")
		assert.False(t, ok)
	})
}

func TestParseRuleSets(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		data := []byte(`
rulesets:
  - name: custom
    scope: [school]
    action: [closed]
    authority: [collector]
    reason: [rain]
    ignore: [reopen]
`)
		sets, err := ParseRuleSets(data)
		require.NoError(t, err)
		require.Contains(t, sets, "custom")
		assert.True(t, sets["custom"].HasScope("school holiday"))
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := ParseRuleSets([]byte("rulesets: []"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no rule sets defined")
	})

	t.Run("duplicate name", func(t *testing.T) {
		data := []byte(`
rulesets:
  - name: a
    scope: [school]
  - name: A
    scope: [college]
`)
		_, err := ParseRuleSets(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate rule set")
	})

	t.Run("empty name", func(t *testing.T) {
		data := []byte(`
rulesets:
  - name: "  "
    scope: [school]
`)
		_, err := ParseRuleSets(data)
		require.Error(t, err)
	})
}
