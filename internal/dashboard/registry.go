// Package dashboard owns the tracked cities and their live panels.
//
// The Registry is the only component that creates or destroys panels. Every
// public operation leaves the stored city list and the live panels mutually
// consistent; the one allowed divergence is a panel added with persist=false
// (the replay of stored cities on load).
package dashboard

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var (
	// ErrPanelNotFound is returned for unknown panel ids.
	ErrPanelNotFound = errors.New("panel not found")
	// ErrNotConfirmed is returned when the user declines a destructive action.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrSuperseded is returned by Refresh when a newer refresh of the same
	// panel started before this one finished; its result was discarded.
	ErrSuperseded = errors.New("refresh superseded")
)

// CityStore persists the ordered list of tracked display names.
type CityStore interface {
	Load() []string
	Save(names []string) error
	Clear() error
}

// Options configures a Registry.
type Options struct {
	Cities        CityStore
	Fetcher       Fetcher
	Pipeline      *Pipeline
	Publisher     Publisher
	DefaultCities []string
	Logger        *zap.Logger
}

// Registry maps tracked cities to live panels and drives their refreshes.
type Registry struct {
	mu sync.Mutex

	cities    CityStore
	fetcher   Fetcher
	pipeline  *Pipeline
	publisher Publisher
	defaults  []string
	logger    *zap.Logger

	panels     []*panel
	active     string
	background Theme
	nextOrder  int
	entropy    *ulid.MonotonicEntropy

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates an empty Registry. Call Load to replay stored cities.
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Pipeline == nil {
		opts.Pipeline = NewPipeline(nil, nil, opts.Logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cities:     opts.Cities,
		fetcher:    opts.Fetcher,
		pipeline:   opts.Pipeline,
		publisher:  opts.Publisher,
		defaults:   opts.DefaultCities,
		logger:     opts.Logger.Named("registry"),
		background: DefaultTheme,
		entropy:    ulid.Monotonic(rand.Reader, 0),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Load creates one panel per stored city without re-persisting them. When the
// store is empty the default cities are stored first.
func (r *Registry) Load() []PanelInfo {
	names := r.cities.Load()
	if len(names) == 0 && len(r.defaults) > 0 {
		names = append([]string(nil), r.defaults...)
		if err := r.cities.Save(names); err != nil {
			r.logger.Warn("failed to store default cities", zap.Error(err))
		}
	}

	infos := make([]PanelInfo, 0, len(names))
	for _, name := range names {
		info, err := r.AddCity(name, false)
		if err != nil {
			r.logger.Warn("skipping stored city", zap.String("name", name), zap.Error(err))
			continue
		}
		infos = append(infos, info)
	}
	r.logger.Info("dashboard loaded", zap.Int("panels", len(infos)))
	return infos
}

// AddCity tracks name. When persist is true the display name is stored unless
// its slug already is, and the panel becomes active. If a live panel already
// exists for the slug it is returned and no panel is created; otherwise a new
// panel is created and its first refresh starts in the background.
func (r *Registry) AddCity(name string, persist bool) (PanelInfo, error) {
	r.mu.Lock()

	city, err := NewTrackedCity(name, r.nextOrder)
	if err != nil {
		r.mu.Unlock()
		return PanelInfo{}, fmt.Errorf("add %q: %w", name, err)
	}

	if persist {
		if err := r.persistLocked(city); err != nil {
			r.mu.Unlock()
			return PanelInfo{}, err
		}
	}

	if existing := r.findBySlugLocked(city.Slug); existing != nil {
		if persist {
			r.active = existing.id
		}
		info := existing.info(r.active)
		if persist {
			r.publisher.Publish(Event{Type: EventPanelFocused, PanelID: info.ID, Panel: &info})
		}
		r.mu.Unlock()
		return info, nil
	}

	now := time.Now()
	p := &panel{
		id:        r.newIDLocked(city.Slug, now),
		city:      city,
		createdAt: now,
	}
	r.nextOrder++
	r.panels = append(r.panels, p)
	if persist || r.active == "" {
		r.active = p.id
	}
	seq := r.beginRefreshLocked(p)
	info := p.info(r.active)
	r.publisher.Publish(Event{Type: EventPanelUpdated, PanelID: info.ID, Panel: &info})
	r.wg.Add(1)
	r.mu.Unlock()

	r.logger.Info("panel created", zap.String("panel", p.id), zap.String("city", city.Name), zap.Bool("persist", persist))

	go func() {
		defer r.wg.Done()
		_ = r.runRefresh(r.ctx, p.id, city.Name, seq)
	}()
	return info, nil
}

// RemoveCity destroys the panel for slug (a display name is accepted too) and
// removes it from the store after the user confirms. Removing an absent city
// is a no-op.
func (r *Registry) RemoveCity(slug string, confirm Confirmer) error {
	slug = Slugify(slug)

	r.mu.Lock()
	name, tracked := r.trackedNameLocked(slug)
	r.mu.Unlock()
	if !tracked {
		return nil
	}

	if confirm != nil && !confirm.Confirm(fmt.Sprintf("Remove %s from dashboard?", name)) {
		return ErrNotConfirmed
	}

	r.mu.Lock()
	stored := r.cities.Load()
	kept := stored[:0:0]
	for _, n := range stored {
		if Slugify(n) != slug {
			kept = append(kept, n)
		}
	}
	if len(kept) != len(stored) {
		if err := r.cities.Save(kept); err != nil {
			r.mu.Unlock()
			return fmt.Errorf("remove %q: %w", slug, err)
		}
	}

	var removed []string
	live := r.panels[:0]
	for _, p := range r.panels {
		if p.city.Slug == slug {
			p.releaseChart()
			removed = append(removed, p.id)
			continue
		}
		live = append(live, p)
	}
	clear(r.panels[len(live):])
	r.panels = live
	r.fixActiveLocked()
	for _, id := range removed {
		r.publisher.Publish(Event{Type: EventPanelRemoved, PanelID: id})
	}
	r.mu.Unlock()

	for _, id := range removed {
		r.logger.Info("panel removed", zap.String("panel", id))
	}
	return nil
}

// ClearAll empties the store and destroys every panel after the user confirms.
func (r *Registry) ClearAll(confirm Confirmer) error {
	if confirm != nil && !confirm.Confirm("Clear all saved cities?") {
		return ErrNotConfirmed
	}

	r.mu.Lock()
	if err := r.cities.Clear(); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("clear cities: %w", err)
	}
	for _, p := range r.panels {
		p.releaseChart()
	}
	n := len(r.panels)
	r.panels = nil
	r.active = ""
	r.publisher.Publish(Event{Type: EventPanelsCleared})
	r.mu.Unlock()

	r.logger.Info("dashboard cleared", zap.Int("panels", n))
	return nil
}

// Refresh re-fetches and re-renders one panel and waits for the result. It
// returns ErrSuperseded when a later refresh of the panel started meanwhile.
func (r *Registry) Refresh(ctx context.Context, id string) error {
	r.mu.Lock()
	p := r.findLocked(id)
	if p == nil {
		r.mu.Unlock()
		return ErrPanelNotFound
	}
	seq := r.beginRefreshLocked(p)
	info := p.info(r.active)
	city := p.city.Name
	r.publisher.Publish(Event{Type: EventPanelUpdated, PanelID: id, Panel: &info})
	r.mu.Unlock()

	return r.runRefresh(ctx, id, city, seq)
}

// StartRefresh begins a refresh of one panel and returns without waiting. The
// result arrives as a panel.updated event.
func (r *Registry) StartRefresh(id string) (PanelInfo, error) {
	r.mu.Lock()
	p := r.findLocked(id)
	if p == nil {
		r.mu.Unlock()
		return PanelInfo{}, ErrPanelNotFound
	}
	seq := r.beginRefreshLocked(p)
	info := p.info(r.active)
	city := p.city.Name
	r.publisher.Publish(Event{Type: EventPanelUpdated, PanelID: id, Panel: &info})
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		_ = r.runRefresh(r.ctx, id, city, seq)
	}()
	return info, nil
}

// RefreshAll refreshes every live panel concurrently and waits for all of them.
func (r *Registry) RefreshAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.panels))
	for _, p := range r.panels {
		ids = append(ids, p.id)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Refresh(ctx, id)
			if err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrPanelNotFound) {
				r.logger.Debug("scheduled refresh failed", zap.String("panel", id), zap.Error(err))
			}
		}()
	}
	wg.Wait()
}

// Focus makes a panel the active one.
func (r *Registry) Focus(id string) (PanelInfo, error) {
	r.mu.Lock()
	p := r.findLocked(id)
	if p == nil {
		r.mu.Unlock()
		return PanelInfo{}, ErrPanelNotFound
	}
	r.active = p.id
	info := p.info(r.active)
	r.publisher.Publish(Event{Type: EventPanelFocused, PanelID: id, Panel: &info})
	r.mu.Unlock()

	return info, nil
}

// Panels returns the live panels in creation order.
func (r *Registry) Panels() []PanelInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PanelInfo, 0, len(r.panels))
	for _, p := range r.panels {
		out = append(out, p.info(r.active))
	}
	return out
}

// Panel returns one live panel.
func (r *Registry) Panel(id string) (PanelInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.findLocked(id)
	if p == nil {
		return PanelInfo{}, ErrPanelNotFound
	}
	return p.info(r.active), nil
}

// Active returns the id of the active panel, or "" when there is none.
func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Background returns the theme of the most recent successful render.
func (r *Registry) Background() Theme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.background
}

// Wait blocks until every background refresh has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

// Close cancels background refreshes and waits for them.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Registry) beginRefreshLocked(p *panel) uint64 {
	p.seq++
	p.status = StatusLoading
	p.message = loadingMessage(p.city.Name)
	return p.seq
}

// runRefresh fetches without holding the lock, then renders only if the panel
// still exists and no later refresh has started.
func (r *Registry) runRefresh(ctx context.Context, id, city string, seq uint64) error {
	bundle, fetchErr := r.fetcher.Collect(ctx, city)

	r.mu.Lock()
	p := r.findLocked(id)
	if p == nil {
		r.mu.Unlock()
		r.logger.Debug("panel gone before refresh finished", zap.String("panel", id))
		return ErrPanelNotFound
	}
	if seq != p.seq {
		r.mu.Unlock()
		r.logger.Debug("discarding stale refresh", zap.String("panel", id), zap.Uint64("seq", seq), zap.Uint64("latest", p.seq))
		return ErrSuperseded
	}

	var res renderResult
	err := fetchErr
	if err == nil {
		res, err = r.pipeline.render(p, bundle)
	}
	if err != nil {
		r.pipeline.fail(p, err)
	}

	backgroundChanged := err == nil && res.theme != r.background
	if err == nil {
		r.background = res.theme
	}
	// events leave under the lock so they reach clients in sequence order
	info := p.info(r.active)
	r.publisher.Publish(Event{Type: EventPanelUpdated, PanelID: id, Panel: &info})
	if backgroundChanged {
		theme := res.theme
		r.publisher.Publish(Event{Type: EventBackgroundChanged, Background: &theme})
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("refresh failed", zap.String("panel", id), zap.String("city", city), zap.Error(err))
		return err
	}
	if res.alert != nil {
		r.pipeline.notify(ctx, *res.alert)
	}
	return nil
}

func (r *Registry) persistLocked(city TrackedCity) error {
	stored := r.cities.Load()
	for _, n := range stored {
		if Slugify(n) == city.Slug {
			return nil
		}
	}
	if err := r.cities.Save(append(stored, city.Name)); err != nil {
		return fmt.Errorf("store %q: %w", city.Name, err)
	}
	return nil
}

// trackedNameLocked reports whether slug has a live panel or a stored entry,
// and a display name for it.
func (r *Registry) trackedNameLocked(slug string) (string, bool) {
	if p := r.findBySlugLocked(slug); p != nil {
		return p.city.Name, true
	}
	for _, n := range r.cities.Load() {
		if Slugify(n) == slug {
			return NormalizeName(n), true
		}
	}
	return "", false
}

func (r *Registry) findLocked(id string) *panel {
	for _, p := range r.panels {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (r *Registry) findBySlugLocked(slug string) *panel {
	for _, p := range r.panels {
		if p.city.Slug == slug {
			return p
		}
	}
	return nil
}

// fixActiveLocked moves focus to the last panel when the active one is gone.
func (r *Registry) fixActiveLocked() {
	if r.findLocked(r.active) != nil {
		return
	}
	r.active = ""
	if n := len(r.panels); n > 0 {
		r.active = r.panels[n-1].id
	}
}

// newIDLocked derives a process-unique panel id from the slug and the creation
// time. The monotonic ULID keeps ids distinct when a city is re-added within
// the same millisecond.
func (r *Registry) newIDLocked(slug string, now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), r.entropy)
	return "tab-" + slug + "-" + strings.ToLower(id.String())
}
