// Package simclock реализует ускоренный календарь симулятора: один день за тик.
package simclock

import "time"

// DefaultTickInterval задаёт реальный интервал между тиками.
const DefaultTickInterval = time.Second

// Clock хранит текущую симулированную дату.
type Clock struct {
	current time.Time
	wall    func() time.Time
}

// New создаёт часы, начинающие отсчёт с реального текущего времени.
func New(wall func() time.Time) *Clock {
	if wall == nil {
		wall = time.Now
	}
	return &Clock{current: wall(), wall: wall}
}

// Now возвращает текущую симулированную дату.
func (c *Clock) Now() time.Time {
	return c.current
}

// Tick продвигает календарь на один день и возвращает новую дату.
func (c *Clock) Tick() time.Time {
	c.current = c.current.AddDate(0, 0, 1)
	return c.current
}

// ResetToNow отбрасывает накопленное смещение и возвращает календарь к реальному времени.
func (c *Clock) ResetToNow() time.Time {
	c.current = c.wall()
	return c.current
}

// Restore устанавливает ранее сохранённую дату. Нулевая дата игнорируется.
func (c *Clock) Restore(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	c.current = t
	return true
}
