// Package models defines the value types passed between the authorization server, the token
// exchange client and the command line helpers.
//
//   - [Credentials] : client id, secret and redirect URI, loaded once at startup
//   - [ScopeSet] : ordered, de-duplicated permission list sent on the authorize redirect
//   - [AuthorizationAttempt] : one pending authorization, identified by its state value
//   - [TokenResponse] : the token endpoint payload, rendered and then discarded
//
// None of these types are persisted.
package models
