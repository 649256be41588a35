package disease

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseType_RoundTrip verifies parsing and String agree for every type.
func TestParseType_RoundTrip(t *testing.T) {
	for _, name := range []string{"SI", "SIS", "SIR"} {
		typ, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, name, typ.String())
	}
}

// TestParseType_Unknown verifies unrecognized names are rejected.
func TestParseType_Unknown(t *testing.T) {
	_, err := ParseType("SEIR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEIR")
}

// TestNewProfile_Compartments verifies the strategy table resolves the
// correct compartment set per disease type.
func TestNewProfile_Compartments(t *testing.T) {
	p, err := NewProfile(SIS, false)
	require.NoError(t, err)
	assert.Equal(t, []Status{Susceptible, Infected}, p.Compartments)

	p, err = NewProfile(SIR, true)
	require.NoError(t, err)
	assert.Equal(t, []Status{Susceptible, Infected, Recovered}, p.Compartments)
	assert.True(t, p.Bipartite)
}

// TestProfile_ValidStatus verifies recovered is only legal under SIR.
func TestProfile_ValidStatus(t *testing.T) {
	si, err := NewProfile(SI, false)
	require.NoError(t, err)
	assert.True(t, si.ValidStatus(Susceptible))
	assert.True(t, si.ValidStatus(Infected))
	assert.False(t, si.ValidStatus(Recovered))

	sir, err := NewProfile(SIR, false)
	require.NoError(t, err)
	assert.True(t, sir.ValidStatus(Recovered))
}
