package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/pointsdash/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	UTORid string
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT shared with the points service.
type AccessTokenClaims struct {
	UserID string     `json:"user_id"`
	UTORid string     `json:"utorid,omitempty"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
