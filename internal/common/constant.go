// Package common contains constants shared by the client layers.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer credential
// on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// Keys used in the durable session store.
const (
	TokenKey       = "auth_token"
	FingerprintKey = "fingerprint"
)
