// Package common contains constants shared by the cracksmith client layers.
package common

// AuthorizationHeaderName carries the bearer access token on outbound
// requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the token in the Authorization header.
const BearerScheme = "Bearer "

// Keys under which the local database persists session material.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	DeviceIDKey     = "device_id"
)

// MinPINLength is the shortest PIN the client will submit.
const MinPINLength = 4
