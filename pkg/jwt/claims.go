package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims are the claims carried by API bearer tokens.
type Claims struct {
	jwt.RegisteredClaims
	Tenant string `json:"tenant"`
	Role   string `json:"role"`
}

type Role string

const (
	RoleViewer Role = "viewer"
	RoleAdmin  Role = "admin"
)

// CanAdminister reports whether the claims may trigger rebuilds for tenant.
func (c *Claims) CanAdminister(tenant string) bool {
	return Role(c.Role) == RoleAdmin && c.Tenant == tenant
}
