package models

// -----------------------------------------------------------------------------
// Progress feed payload pushed to websocket subscribers
// -----------------------------------------------------------------------------

type MSeedProgress struct {
	Type      string        `json:"type"` // "INITIAL" or "UPDATE"
	Summary   *MSeedSummary `json:"summary"`
	Universe  int           `json:"universe"`
	Timestamp int64         `json:"timestamp"`
}

// MClientCommand is a message sent by a websocket subscriber.
type MClientCommand struct {
	Command string `json:"command"` // "status"
}
