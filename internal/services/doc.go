// Package services talks to Spotify: the accounts service for OAuth tokens and the Web API for the demo calls.
//
// # Authorization
//
// [AuthService] wraps [oauth2.Config] with the application's credentials. The client credentials travel
// in an HTTP Basic header on every token request, and each request is bounded by a timeout.
//
// [BuildAuthURL] is the pure form of [AuthService.AuthURL] and can be used without a client secret.
//
// # Web API
//
// [SpotifyService] sends a caller-supplied access token as a Bearer credential. It never refreshes the
// token itself; an expired token is reported so the caller can run a refresh.
//
// [DemoEndpoints] lists the calls made by the example command, each reduced to a [formatter.Section].
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrMissingCredentials] : client id or secret not configured
//   - [shared.ErrTokenExchange] : token endpoint answered with an error, see [TokenExchangeError]
//   - [shared.ErrNetwork] : no response (dial failure, timeout)
//   - [shared.ErrTokenExpired] : Web API rejected the access token, see [APIError]
//   - [shared.ErrAPIRequest] : any other Web API failure
package services
