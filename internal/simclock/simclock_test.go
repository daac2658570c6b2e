package simclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedWall(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTickAdvancesOneDay(t *testing.T) {
	start := time.Date(2024, time.January, 30, 12, 0, 0, 0, time.UTC)
	c := New(fixedWall(start))

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.AddDate(0, 0, 1), c.Tick())
	c.Tick()
	assert.Equal(t, time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC), c.Now())
}

func TestResetToNow(t *testing.T) {
	wall := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	c := New(fixedWall(wall))

	for i := 0; i < 100; i++ {
		c.Tick()
	}
	assert.True(t, c.Now().After(wall))

	assert.Equal(t, wall, c.ResetToNow())
	assert.Equal(t, wall, c.Now())
}

func TestRestore(t *testing.T) {
	wall := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	c := New(fixedWall(wall))

	assert.False(t, c.Restore(time.Time{}))
	assert.Equal(t, wall, c.Now())

	saved := wall.AddDate(1, 0, 0)
	assert.True(t, c.Restore(saved))
	assert.Equal(t, saved, c.Now())
}
