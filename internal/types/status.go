package types

// Status tracks the lifecycle of a stored record and determines whether it is
// included in queries.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)
