package auth

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Username string
	Role     enums.CustomerRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to customers. The username
// travels in the registered "sub" claim.
type AccessTokenClaims struct {
	Role enums.CustomerRole `json:"role"`
	jwt.RegisteredClaims
}

// Username returns the subject the token was minted for.
func (c *AccessTokenClaims) Username() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
