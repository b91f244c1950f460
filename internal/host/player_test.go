package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/keyhold/internal/dispatch"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPlayer() (*Player, *clock) {
	c := &clock{t: time.Unix(1000, 0)}
	return NewPlayer("Talk", 10*time.Minute, 5*time.Second, c.now), c
}

func synthKey(kind dispatch.KeyKind, logical string) dispatch.SyntheticKey {
	id, err := dispatch.Identity(logical)
	if err != nil {
		panic(err)
	}
	return dispatch.SyntheticKey{Kind: kind, KeyIdentity: id}
}

func TestPlayer_PlayheadFollowsClock(t *testing.T) {
	p, c := newTestPlayer()

	c.advance(time.Minute)
	assert.Equal(t, time.Duration(0), p.Position(), "paused player does not move")

	p.Play()
	c.advance(30 * time.Second)
	assert.Equal(t, 30*time.Second, p.Position())
	assert.True(t, p.Playing())

	p.Pause()
	c.advance(time.Minute)
	assert.Equal(t, 30*time.Second, p.Position())
}

func TestPlayer_ArrowKeysSeek(t *testing.T) {
	p, _ := newTestPlayer()

	require.NoError(t, p.DispatchKey(synthKey(dispatch.KeyDown, dispatch.ArrowRight)))
	require.NoError(t, p.DispatchKey(synthKey(dispatch.KeyUp, dispatch.ArrowRight)))
	assert.Equal(t, 5*time.Second, p.Position(), "only the down half seeks")

	require.NoError(t, p.DispatchKey(synthKey(dispatch.KeyDown, dispatch.ArrowLeft)))
	require.NoError(t, p.DispatchKey(synthKey(dispatch.KeyDown, dispatch.ArrowLeft)))
	assert.Equal(t, time.Duration(0), p.Position(), "clamped at the start")
}

func TestPlayer_HeldSpaceDoublesRate(t *testing.T) {
	p, c := newTestPlayer()
	p.Play()

	require.NoError(t, p.DispatchKey(synthKey(dispatch.KeyDown, dispatch.Space)))
	assert.InDelta(t, BoostRate, p.Rate(), 0)
	c.advance(10 * time.Second)
	require.NoError(t, p.DispatchKey(synthKey(dispatch.KeyUp, dispatch.Space)))
	c.advance(10 * time.Second)

	assert.Equal(t, 30*time.Second, p.Position())
	assert.InDelta(t, 1.0, p.Rate(), 0)
}

func TestPlayer_SeekClampsToLength(t *testing.T) {
	p, c := newTestPlayer()

	require.NoError(t, p.SeekBy(time.Hour))
	assert.Equal(t, 10*time.Minute, p.Position())

	p.Play()
	c.advance(time.Second)
	assert.False(t, p.Playing(), "stops at the end")
}

func TestPlayer_NoMedia(t *testing.T) {
	p := NewPlayer("", 0, time.Second, nil)

	assert.ErrorIs(t, p.SeekBy(time.Second), ErrNoMedia)
	assert.ErrorIs(t, p.SeekTo(time.Second), ErrNoMedia)
}

func TestPlayer_OnChange(t *testing.T) {
	p, _ := newTestPlayer()
	calls := 0
	p.SetOnChange(func() { calls++ })

	_ = p.SeekBy(time.Second)
	p.SetRate(2)
	p.Toggle()
	_ = NewPlayer("", 0, 0, nil).SeekBy(time.Second)

	assert.Equal(t, 3, calls)
}
