package chat

import "time"

// Role tags the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of a conversation, in display order.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// UserTurn builds a user-authored turn stamped with at.
func UserTurn(text string, at time.Time) Turn {
	return Turn{Role: RoleUser, Text: text, Timestamp: at}
}

// ModelTurn builds a model-authored turn stamped with at.
func ModelTurn(text string, at time.Time) Turn {
	return Turn{Role: RoleModel, Text: text, Timestamp: at}
}
