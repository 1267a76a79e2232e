// Package services implements the OAuth provider boundary for the Wahoo fitness API.
//
// # Token Exchange
//
// [TokenExchanger] is the single operation the callback handler depends on: trade an
// authorization code for an access token. [WahooService] implements it with [oauth2.Config]
// using a form-encoded authorization_code grant with the client credentials in the body.
//
// The service is stateless. Credentials are passed on every call so the caller decides
// whether the configuration is complete before anything goes over the wire.
//
// # Error Handling
//
// Every failure is returned as an [ExchangeError] with one of two kinds:
//   - [shared.KindProviderError] : the token endpoint answered with a non-2xx status
//     (or a 2xx without an access token); Code and Description carry the OAuth error fields
//   - [shared.KindTransportFailure] : the endpoint could not be reached
//
// [ExchangeError.Detail] picks the most specific message for display. Exchanges are never retried.
//
// # Token Verification
//
// [WahooService.VerifyToken] calls /v1/user with a bearer token, used by the CLI to confirm a
// freshly exchanged token works.
package services
