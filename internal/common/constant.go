package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer token.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName echoes the per-request id back to the caller.
	RequestIDHeaderName = "X-Request-ID"

	// SaltSize is the number of random bytes in a user salt before base64.
	SaltSize = 40
)
