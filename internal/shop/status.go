package shop

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusRejected UserStatus = "rejected"
)

var validNext = map[UserStatus]map[UserStatus]bool{
	StatusPending:  {StatusApproved: true, StatusRejected: true},
	StatusApproved: {},
	StatusRejected: {},
}

// CanTransition reports whether from -> to is an edge of the approval workflow.
func CanTransition(from, to UserStatus) bool {
	return validNext[from][to]
}
