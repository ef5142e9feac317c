package common

// AuthHeaderName is the HTTP header that carries the bearer access token.
const AuthHeaderName = "Authorization"

// BearerPrefix prefixes the access token in the Authorization header.
const BearerPrefix = "Bearer "
