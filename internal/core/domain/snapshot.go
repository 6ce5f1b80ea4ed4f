package domain

// Snapshot is the full engine state as handed to persistence.
// Version grows with every successful mutation and is used by stores to
// refuse overwriting newer state with older state.
type Snapshot struct {
	Version       int64      `json:"version"`
	Users         []User     `json:"users"`
	Products      []Product  `json:"products"`
	Cart          []LineItem `json:"cart"`
	Orders        []Order    `json:"orders"`
	CurrentUserID string     `json:"current_user_id,omitempty"`
}
