// Package client is the client side of the cracksmith REST API.
//
// # Overview
//
// The package provides:
//  1. The Client interface: register/login, current identity, access-token
//     refresh, PIN and installation calls, job create/list/get/delete and
//     user statistics.
//  2. HTTPClient, the JSON-over-HTTP implementation. It validates every
//     response against explicit schemas and maps status codes onto sentinel
//     errors.
//  3. Local database bootstrap (InitDatabase, RunMigrations) wiring SQLite
//     and the embedded goose migrations.
//
// # Error Handling
//
// Failures are classified with sentinel errors matched through errors.Is:
// ErrValidation, ErrUnauthorized, ErrPINRequired, ErrSessionExpired,
// ErrNotFound, ErrConflict, ErrTransport, ErrNotAuthenticated and
// ErrStaleResult. Server rejections are *APIError values that keep the
// server's message and unwrap to one of the sentinels.
//
// # Credentials
//
// HTTPClient reads bearer tokens from a TokenSource and never persists or
// replaces them; the session service owns the credential pair.
package client
