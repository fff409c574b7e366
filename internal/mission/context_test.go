package mission

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext()

	m := ctx.GetMission()
	assert.Equal(t, "No mission loaded", m.Name)
	assert.Empty(t, m.ID)
	assert.Nil(t, ctx.LogAttrs())
}

func TestContext_Start(t *testing.T) {
	ctx := NewContext()
	m := ctx.Start("Fulda Gap", "canonical", 10, 6)

	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
	assert.Same(t, m, ctx.GetMission())
	assert.Equal(t, 6, m.Loiter)

	round, phase := ctx.Progress()
	assert.Equal(t, 1, round)
	assert.Empty(t, phase)

	other := ctx.Start("Fulda Gap", "canonical", 10, 6)
	assert.NotEqual(t, m.ID, other.ID)
}

func TestContext_LogAttrs(t *testing.T) {
	ctx := NewContext()
	ctx.Start("Fulda Gap", "canonical", 10, 6)
	ctx.SetProgress(3, "ENEMY_FIRE")

	attrs := ctx.LogAttrs()
	require.Len(t, attrs, 3)
	assert.Equal(t, "Fulda Gap", attrs[0].Value.String())
	assert.Equal(t, int64(3), attrs[1].Value.Int64())
	assert.Equal(t, "ENEMY_FIRE", attrs[2].Value.String())
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext()
	ctx.Start("m", "canonical", 10, 6)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(r int) {
			defer wg.Done()
			ctx.SetProgress(r, "AWAITING_PLAYER_ACTION")
		}(i)
		go func() {
			defer wg.Done()
			_ = ctx.LogAttrs()
		}()
	}
	wg.Wait()
}
