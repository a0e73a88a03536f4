package entity

// Role is assigned by join order. The values double as the piece colours the client expects.
type Role string

const (
	RoleFirst  Role = "w"
	RoleSecond Role = "b"
)

type Participant struct {
	ConnectionID string `json:"connection_id"`
	Role         Role   `json:"role"`
}

func (that Role) String() string {
	switch that {
	case RoleFirst:
		return "first"
	case RoleSecond:
		return "second"
	default:
		return "unknown"
	}
}
