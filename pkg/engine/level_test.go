package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-torda/modelfix/pkg/diag"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		warn bool
	}{
		{"", LevelVeryFast, false},
		{"none", LevelNone, false},
		{"very_fast", LevelVeryFast, false},
		{"fast", LevelFast, false},
		{"SLOW", LevelSlow, false},
		{"very_slow", LevelVerySlow, false},
		{" slow_large ", LevelSlowLarge, false},
		{"ludicrous", LevelVeryFast, true},
	}
	for _, tt := range tests {
		got, w := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, "level for %q", tt.in)
		if !tt.warn {
			assert.Nil(t, w, "no warning for %q", tt.in)
			continue
		}
		require.NotNil(t, w, "warning for %q", tt.in)
		assert.Equal(t, diag.WarnRefinement, w.Kind)
		assert.Contains(t, w.Msg, "ludicrous")
		assert.Contains(t, w.Msg, "very_fast, fast, slow, very_slow, slow_large")
	}
}

func TestLevelPython(t *testing.T) {
	assert.Equal(t, "None", LevelNone.Python())
	assert.Equal(t, "refine.very_fast", LevelVeryFast.Python())
	assert.Equal(t, "refine.slow_large", LevelSlowLarge.Python())
	assert.Equal(t, "slow", LevelSlow.String())
	assert.Equal(t, "unknown", Level(42).String())
}
