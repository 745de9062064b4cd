package dashboard

import (
	"time"

	"github.com/i474232898/weather-dashboard/internal/chart"
)

// Status is a panel's refresh state.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// panel is the registry-owned state of one live panel.
type panel struct {
	id        string
	city      TrackedCity
	createdAt time.Time
	updatedAt time.Time

	status  Status
	message string
	view    View

	// seq is the sequence number of the latest refresh started for this panel.
	seq   uint64
	chart chart.Chart
}

func (p *panel) releaseChart() {
	if p.chart != nil {
		p.chart.Destroy()
		p.chart = nil
	}
}

// PanelInfo is a read-only copy of a panel. View sections are shared with the
// registry but are replaced, never mutated, on refresh.
type PanelInfo struct {
	ID        string      `json:"id"`
	City      TrackedCity `json:"city"`
	Status    Status      `json:"status"`
	Message   string      `json:"message"`
	View      View        `json:"view"`
	Sequence  uint64      `json:"sequence"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt,omitempty"`
}

func (p *panel) info(active string) PanelInfo {
	return PanelInfo{
		ID:        p.id,
		City:      p.city,
		Status:    p.status,
		Message:   p.message,
		View:      p.view,
		Sequence:  p.seq,
		Active:    p.id == active,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
	}
}
