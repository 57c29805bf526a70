// Package server is the local HTTP server that completes the authorization code flow.
//
// # Routes
//
//	GET /          instructions and an "Authorize with Spotify" link
//	GET /login     issues a new attempt and redirects to the authorization page
//	GET /callback  verifies state, exchanges the code and shows the tokens
//	GET /refresh   trades ?refresh_token= for a new access token
//	GET /healthz   readiness probe used by the serve command
//
// Any other method on these paths is answered with 405.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [CallbackHandler] resolves every callback to one [Outcome]. Pending attempts live in a [StateStore];
// a state is accepted once and only within its time to live, so replays and forged callbacks are rejected
// before any token request is made.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
