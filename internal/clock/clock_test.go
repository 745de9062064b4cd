package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFormatInZone(t *testing.T) {
	c := New("Asia/Kolkata", zap.NewNop())
	at := time.Date(2024, 3, 4, 7, 30, 5, 0, time.UTC)

	assert.Equal(t, "Asia/Kolkata", c.Zone())
	assert.Equal(t, "Monday, Mar 4, 2024, 1:00:05 PM", c.Format(at))
}

func TestNowUsesInjectedTime(t *testing.T) {
	c := New("UTC", zap.NewNop())
	at := time.Date(2024, 12, 25, 23, 59, 59, 0, time.UTC)
	c.now = func() time.Time { return at }

	tick := c.Now()
	assert.Equal(t, "UTC", tick.Zone)
	assert.Equal(t, "Wednesday, Dec 25, 2024, 11:59:59 PM", tick.Text)
	assert.Equal(t, at, tick.At)
}

func TestUnknownZoneFallsBackToLocal(t *testing.T) {
	c := New("Mars/Olympus_Mons", zap.NewNop())
	assert.Equal(t, time.Local.String(), c.Zone())
}
