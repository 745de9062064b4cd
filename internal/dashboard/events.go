package dashboard

// EventType names a registry event.
type EventType string

const (
	EventPanelUpdated      EventType = "panel.updated"
	EventPanelRemoved      EventType = "panel.removed"
	EventPanelsCleared     EventType = "panels.cleared"
	EventPanelFocused      EventType = "panel.focused"
	EventBackgroundChanged EventType = "background.changed"
)

// Event describes one registry state change.
type Event struct {
	Type       EventType  `json:"type"`
	PanelID    string     `json:"panelId,omitempty"`
	Panel      *PanelInfo `json:"panel,omitempty"`
	Background *Theme     `json:"background,omitempty"`
}

// Publisher receives registry events. Publish is called with the registry
// lock held, so it must not block or call back into the Registry.
type Publisher interface {
	Publish(e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed is a Confirmer that always agrees.
var Confirmed = ConfirmFunc(func(string) bool { return true })
