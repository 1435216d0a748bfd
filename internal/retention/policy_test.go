package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDays(t *testing.T) {
	assert.Equal(t, 7, Days(TierFree))
	assert.Equal(t, 365, Days(TierPro))
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierPro, ParseTier("PRO"))
	assert.Equal(t, TierFree, ParseTier("FREE"))
	assert.Equal(t, TierFree, ParseTier(""))
	assert.Equal(t, TierFree, ParseTier("ENTERPRISE"))
}

func TestEffectiveStartClampsRequestedDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pro request older than window starts at cutoff", func(t *testing.T) {
		requested := now.AddDate(0, 0, -400)
		cutoff := Cutoff(TierPro, now)

		got := EffectiveStart(requested, cutoff)

		assert.Equal(t, now.AddDate(0, 0, -365), got)
		assert.NotEqual(t, requested, got)
	})

	t.Run("request inside window unchanged", func(t *testing.T) {
		requested := now.AddDate(0, 0, -3)
		cutoff := Cutoff(TierFree, now)

		assert.Equal(t, requested, EffectiveStart(requested, cutoff))
	})

	t.Run("free cutoff is seven days", func(t *testing.T) {
		assert.Equal(t, now.AddDate(0, 0, -7), Cutoff(TierFree, now))
	})
}
