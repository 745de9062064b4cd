package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Permission mirrors the browser notification permission states.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notification is one adverse-condition alert.
type Notification struct {
	ID        string            `json:"id"`
	PanelID   string            `json:"panelId"`
	City      string            `json:"city"`
	Condition weather.Condition `json:"condition"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
}

// Notifier is the notification surface. The pipeline only reads the
// permission; it never asks for it.
type Notifier interface {
	Permission() Permission
	Notify(ctx context.Context, n Notification) error
}

type alertTemplate struct {
	title string
	body  string // city, description
}

var alertTemplates = map[weather.Condition]alertTemplate{
	weather.ConditionRain: {
		title: "Rain alert",
		body:  "It's raining in %s (%s). Take an umbrella.",
	},
	weather.ConditionThunderstorm: {
		title: "Storm alert",
		body:  "Thunderstorm in %s (%s). Stay indoors if you can.",
	},
	weather.ConditionSnow: {
		title: "Snow alert",
		body:  "Snow in %s (%s). Roads may be slippery.",
	},
}

// alertFor builds the notification for a snapshot, if its condition warrants one.
func alertFor(panelID, city string, s weather.WeatherSnapshot) (Notification, bool) {
	tpl, ok := alertTemplates[s.Condition]
	if !ok {
		return Notification{}, false
	}
	desc := s.Description
	if desc == "" {
		desc = string(s.Condition)
	}
	return Notification{
		ID:        uuid.NewString(),
		PanelID:   panelID,
		City:      city,
		Condition: s.Condition,
		Title:     tpl.title,
		Body:      fmt.Sprintf(tpl.body, city, desc),
	}, true
}

// nopNotifier never has permission.
type nopNotifier struct{}

func (nopNotifier) Permission() Permission                     { return PermissionDefault }
func (nopNotifier) Notify(context.Context, Notification) error { return nil }
