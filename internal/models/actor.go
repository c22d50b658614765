package models

import "github.com/golang-jwt/jwt/v5"

// ActorClaims is the payload of bearer tokens issued by the faculty SSO
// gateway. This service never issues tokens; it only reads the acting staff
// identity for created_by/updated_by snapshots and audit rows.
type ActorClaims struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// AnonymousActor is stamped when no valid token accompanies a request.
const AnonymousActor = "unknown"

// Identity returns the display identity recorded in audit fields.
func (c *ActorClaims) Identity() string {
	if c == nil {
		return AnonymousActor
	}
	if c.FullName != "" {
		return c.FullName
	}
	if c.Email != "" {
		return c.Email
	}
	if c.Subject != "" {
		return c.Subject
	}
	return AnonymousActor
}
