package event

type Type string

const (
	TypeViewSaved          Type = "view.saved"
	TypeViewDeleted        Type = "view.deleted"
	TypePreferencesUpdated Type = "preferences.updated"
)

// Event is broadcast to connected clients so a second tab learns that its
// saved views or active preferences changed under it (saves are
// last-write-wins; the notification is the only reconciliation offered).
type Event struct {
	ID         string `json:"id"`
	Type       Type   `json:"type"`
	EntityType string `json:"entity_type"`
	Payload    any    `json:"payload,omitempty"`
	Timestamp  string `json:"timestamp"`
	ActorID    string `json:"actor_id,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
