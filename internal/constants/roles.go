package constants

// Role is the role carried by a signed admin token.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

func (r Role) String() string { return string(r) }
