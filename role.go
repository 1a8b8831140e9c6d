package frame

// Role identifies who authored a turn.
type Role string

const (
	RoleHuman Role = "human"
	RoleAgent Role = "agent"
)
