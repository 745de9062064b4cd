// Package clock renders the dashboard's live clock for a fixed time zone.
package clock

import (
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
)

// Layout is the clock's display format.
const Layout = "Monday, Jan 2, 2006, 3:04:05 PM"

// Tick is one rendered clock value.
type Tick struct {
	Zone string    `json:"zone"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Clock formats the current time in one zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New creates a clock for the IANA zone name. An unknown zone falls back to
// local time.
func New(zone string, logger *zap.Logger) *Clock {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		logger.Warn("unknown clock time zone; using local time", zap.String("zone", zone), zap.Error(err))
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

// Zone returns the clock's zone name.
func (c *Clock) Zone() string {
	return c.loc.String()
}

// Format renders t in the clock's zone.
func (c *Clock) Format(t time.Time) string {
	return t.In(c.loc).Format(Layout)
}

// Now returns the current tick.
func (c *Clock) Now() Tick {
	t := c.now()
	return Tick{Zone: c.Zone(), Text: c.Format(t), At: t}
}
