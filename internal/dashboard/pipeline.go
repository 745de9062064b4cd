package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/chart"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Fetcher collects everything a refresh renders.
type Fetcher interface {
	Collect(ctx context.Context, city string) (weather.Bundle, error)
}

// Pipeline renders fetched data into a panel. Its render step runs while the
// registry lock is held, so chart replacement and view swap happen together.
type Pipeline struct {
	charts   chart.Factory
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewPipeline creates a Pipeline. A nil notifier disables notifications.
func NewPipeline(charts chart.Factory, notifier Notifier, logger *zap.Logger) *Pipeline {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Pipeline{
		charts:   charts,
		notifier: notifier,
		logger:   logger.Named("pipeline"),
		now:      time.Now,
	}
}

type renderResult struct {
	theme Theme
	alert *Notification
}

func loadingMessage(city string) string {
	return fmt.Sprintf("Loading weather for %s…", city)
}

// fail records a refresh error on the panel, keeping the last rendered view.
func (pl *Pipeline) fail(p *panel, err error) {
	p.status = StatusError
	p.message = fmt.Sprintf("Error loading data for %s — %v", p.city.Name, err)
	p.updatedAt = pl.now()
}

// render applies a bundle to p. Current conditions and the multi-day summary
// must succeed; the chart and air quality sections are best-effort.
func (pl *Pipeline) render(p *panel, b weather.Bundle) (renderResult, error) {
	cards, err := forecastCards(b.Forecast)
	if err != nil {
		return renderResult{}, err
	}

	theme := ThemeFor(b.Current.Condition)
	view := View{
		Current:    currentView(b.Current, p.city.Name),
		Forecast:   cards,
		Hourly:     pl.replaceChart(p, b.Forecast),
		Extra:      extraView(b.Current),
		AirQuality: airQualityView(b.AirQuality),
		Theme:      &theme,
	}

	now := pl.now()
	p.view = view
	p.status = StatusReady
	p.message = "Weather updated: " + now.Format("Jan 2, 2006, 3:04:05 PM")
	p.updatedAt = now

	res := renderResult{theme: theme}
	if n, ok := alertFor(p.id, p.city.Name, b.Current); ok {
		res.alert = &n
	}
	return res, nil
}

// replaceChart destroys the panel's chart before creating its replacement.
func (pl *Pipeline) replaceChart(p *panel, series weather.ForecastSeries) *HourlyView {
	p.releaseChart()
	if pl.charts == nil {
		return nil
	}

	c, err := pl.charts.NewChart(series.Hourly(weather.HourlySamples), series.Zone)
	if err != nil {
		pl.logger.Debug("hourly chart skipped", zap.String("panel", p.id), zap.Error(err))
		return nil
	}
	p.chart = c
	return &HourlyView{Points: c.Points(), Chart: c.View()}
}

// notify emits n once when permission was already granted. Failures are logged.
func (pl *Pipeline) notify(ctx context.Context, n Notification) {
	if pl.notifier.Permission() != PermissionGranted {
		return
	}
	if err := pl.notifier.Notify(ctx, n); err != nil {
		pl.logger.Warn("notification failed", zap.String("panel", n.PanelID), zap.Error(err))
	}
}
