package store

// State is the coarse activity state shown to the user.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateError   State = "error"
)

// Status is the observable loading/error value. Message is set only in
// StateError.
type Status struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
}

func (s Status) IsError() bool { return s.State == StateError }

// Event topics published on the store's bus.
const (
	TopicCollection = "drawings.collection"
	TopicStatus     = "drawings.status"
	TopicSelection  = "drawings.selection"
)
