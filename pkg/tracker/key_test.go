package tracker

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBase(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"My Cool App!!", "MYCO"},
		{"my cool app", "MYCO"},
		{"Crater", "CRAT"},
		{"2048 game", "2048"},
		{"ab", "AB"},
		{"!!!", "PROJ"},
		{"", "PROJ"},
		{"日本語", "PROJ"},
		{"x1y2z3", "X1Y2"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, KeyBase(tc.name), "name %q", tc.name)
	}
}

func TestKeyCandidate(t *testing.T) {
	assert.Equal(t, "MYCO", KeyCandidate("MYCO", 0))
	assert.Equal(t, "MYCO1", KeyCandidate("MYCO", 1))
	assert.Equal(t, "MYCO12", KeyCandidate("MYCO", 12))
	// Truncation folds long suffixes back to six characters.
	assert.Equal(t, "MYCO10", KeyCandidate("MYCO", 100))
	assert.Equal(t, "PROJ99", KeyCandidate("PROJ", 99))
}

func TestKeyCandidateShape(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Z0-9]{1,6}$`)
	names := []string{"My Cool App!!", "", "x", "a very long project name indeed", "42"}
	for _, name := range names {
		base := KeyBase(name)
		for attempt := 0; attempt < 150; attempt++ {
			assert.Regexp(t, valid, KeyCandidate(base, attempt))
		}
	}
}

func TestKeyProbeSequence(t *testing.T) {
	// Simulated uniqueness probe: with N existing collisions the first
	// free suffixed candidate wins.
	existing := map[string]bool{"MYCO": true, "MYCO1": true, "MYCO2": true}
	base := KeyBase("My Cool App")
	var got string
	for attempt := 0; attempt < KeyMaxAttempts; attempt++ {
		candidate := KeyCandidate(base, attempt)
		if !existing[candidate] {
			got = candidate
			break
		}
	}
	assert.Equal(t, "MYCO3", got)
}
