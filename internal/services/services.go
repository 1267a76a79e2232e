package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/wahoodash/internal/shared"
	"golang.org/x/oauth2"
)

// TokenExchanger trades an authorization code for an access token.
type TokenExchanger interface {
	Exchange(ctx context.Context, code string, creds Credentials) (*oauth2.Token, error)
}

// Credentials is the OAuth2 client registration used for one exchange.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// CredentialsFrom builds [Credentials] from the Wahoo section of the config.
func CredentialsFrom(cfg shared.WahooConfig) Credentials {
	return Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
	}
}

// ExchangeError is returned by [WahooService.Exchange] when the code could not be traded for a token.
//
// Kind is [shared.KindProviderError] when the provider answered with an error, and
// [shared.KindTransportFailure] when it could not be reached.
type ExchangeError struct {
	Kind        shared.ErrorKind
	Code        string // OAuth error code, e.g. invalid_grant
	Description string // OAuth error_description
	StatusCode  int
	Cause       error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed (%s): %s", e.Kind, e.Detail())
}

// Unwrap returns the underlying error for error unwrapping
func (e *ExchangeError) Unwrap() error {
	return e.Cause
}

// Detail returns the most specific human-readable description available:
// the provider's error_description, then its error code, then the cause.
func (e *ExchangeError) Detail() string {
	switch {
	case e.Description != "":
		return e.Description
	case e.Code != "":
		return e.Code
	case e.Cause != nil:
		return e.Cause.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("token endpoint returned status %d", e.StatusCode)
	default:
		return "unknown error"
	}
}

// Authorizer builds provider authorization URLs.
type Authorizer interface {
	AuthURL(creds Credentials, state string) string
}
