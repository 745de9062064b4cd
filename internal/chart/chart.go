// Package chart renders the hourly temperature trend of a panel.
//
// A chart instance is owned by exactly one panel. The owner must Destroy the
// previous instance before attaching a new one.
package chart

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Chart is a live chart instance bound to one panel.
type Chart interface {
	// View returns the rendered chart, or "" once destroyed.
	View() string
	// Points returns the plotted samples.
	Points() []Point
	Destroy()
}

// Factory creates chart instances.
type Factory interface {
	NewChart(samples []weather.ForecastSample, loc *time.Location) (Chart, error)
}

// Point is one plotted sample.
type Point struct {
	Label       string  `json:"label"`
	Temperature float64 `json:"temperatureC"`
}

var errNoSamples = errors.New("no samples to chart")

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Background(lipgloss.Color("39"))

// BarFactory draws hourly bar charts with ntcharts and tracks how many
// instances are alive.
type BarFactory struct {
	width  int
	height int
	live   atomic.Int64
}

// NewBarFactory creates a factory for charts of the given size in cells.
func NewBarFactory(width, height int) *BarFactory {
	if width <= 0 {
		width = 48
	}
	if height <= 0 {
		height = 8
	}
	return &BarFactory{width: width, height: height}
}

// Live returns the number of instances created and not yet destroyed.
func (f *BarFactory) Live() int {
	return int(f.live.Load())
}

// NewChart draws one bar per sample. Bars are drawn relative to the coldest
// sample so negative temperatures still render.
func (f *BarFactory) NewChart(samples []weather.ForecastSample, loc *time.Location) (Chart, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}
	if loc == nil {
		loc = time.UTC
	}

	base := math.Inf(1)
	for _, s := range samples {
		base = math.Min(base, s.Temperature)
	}
	base = math.Floor(base) - 1

	bc := barchart.New(f.width, f.height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(2),
	)

	points := make([]Point, 0, len(samples))
	for _, s := range samples {
		local := s.Time.In(loc)
		bc.Push(barchart.BarData{
			Label: local.Format("15"),
			Values: []barchart.BarValue{
				{Name: fmt.Sprintf("%.0f°C", s.Temperature), Value: s.Temperature - base, Style: barStyle},
			},
		})
		points = append(points, Point{Label: local.Format("15:04"), Temperature: s.Temperature})
	}
	bc.Draw()

	f.live.Add(1)
	return &barChart{factory: f, view: bc.View(), points: points}, nil
}

type barChart struct {
	mu        sync.Mutex
	factory   *BarFactory
	view      string
	points    []Point
	destroyed bool
}

func (c *barChart) View() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *barChart) Points() []Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Point(nil), c.points...)
}

// Destroy releases the instance. Calling it again is a no-op.
func (c *barChart) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.view = ""
	c.points = nil
	c.factory.live.Add(-1)
}
