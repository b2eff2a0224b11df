// Package client talks to the GoTodo HTTP API on behalf of the CLI.
//
// # Overview
//
//  1. A transport-agnostic contract (see the Client interface) covering
//     registration, login, logout, token refresh and task CRUD.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the
//     bearer token, transparently refreshes an expired access token once
//     per call, and turns error responses into *APIError values.
//  3. Session persistence (see SessionStore and FileSessionStore) so tokens
//     survive between CLI runs.
//
// # Error Handling
//
// *APIError unwraps to the matching sentinel in internal/common, so callers
// can test for common.ErrorNotFound, common.ErrConflict and friends with
// errors.Is. Transport failures wrap ErrUnavailable; calls that need a
// token while none is stored fail with ErrNotLoggedIn.
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
