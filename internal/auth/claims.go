package auth

import "airtraffic/statboard/internal/constants"

// UserClaims is what the auth middleware places on the request context.
type UserClaims interface {
	UserID() string
	Role() string
	Source() string
	TokenID() string
	HasPermission(action string) bool
}

// Actions checked through HasPermission.
const (
	ActionInvalidateCache = "cache:invalidate"
)

// JWTClaims are the claims of a validated admin token.
type JWTClaims struct {
	Subject   string
	RoleValue constants.Role
	JTI       string
}

func (c *JWTClaims) UserID() string  { return c.Subject }
func (c *JWTClaims) Role() string    { return c.RoleValue.String() }
func (c *JWTClaims) Source() string  { return "JWT" }
func (c *JWTClaims) TokenID() string { return c.JTI }

func (c *JWTClaims) HasPermission(action string) bool {
	switch action {
	case ActionInvalidateCache:
		return c.RoleValue == constants.RoleAdmin
	default:
		return false
	}
}
