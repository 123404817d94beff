package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Credential issuance lives outside this service; the claims only carry the
// opaque tenant identity the core needs.
type AccessTokenPayload struct {
	TenantID uuid.UUID
	Subject  string
	JTI      string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	TenantID uuid.UUID `json:"tenant_id"`
	jwt.RegisteredClaims
}
