package common

// AuthorizationHeaderName carries the bearer token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"
