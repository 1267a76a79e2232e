// Wahoo API implementation of [TokenExchanger]
//
// Endpoints based on https://cloud-api.wahooligan.com/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/wahoodash/internal/shared"
	"golang.org/x/oauth2"
)

const (
	wahooAuthURL  = "https://api.wahooligan.com/oauth/authorize"
	wahooTokenURL = "https://api.wahooligan.com/oauth/token"
	wahooBaseURL  = "https://api.wahooligan.com/v1"
)

// WahooService talks to the Wahoo OAuth endpoints.
//
// It holds no per-user state; credentials are supplied on every call.
type WahooService struct {
	authURL    string
	tokenURL   string
	apiURL     string
	scopes     []string
	httpClient *http.Client
}

// WahooOpts configures a [WahooService]. Empty fields fall back to the public Wahoo endpoints.
type WahooOpts struct {
	AuthURL    string
	TokenURL   string
	APIURL     string
	Scopes     []string
	HTTPClient *http.Client
}

// NewWahooService creates a new Wahoo service.
func NewWahooService(opts WahooOpts) *WahooService {
	if opts.AuthURL == "" {
		opts.AuthURL = wahooAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = wahooTokenURL
	}
	if opts.APIURL == "" {
		opts.APIURL = wahooBaseURL
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{"user_read"}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &WahooService{
		authURL:    opts.AuthURL,
		tokenURL:   opts.TokenURL,
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		scopes:     opts.Scopes,
		httpClient: opts.HTTPClient,
	}
}

// NewWahooServiceFromConfig creates a [WahooService] from the Wahoo section of the config.
func NewWahooServiceFromConfig(cfg shared.WahooConfig) *WahooService {
	return NewWahooService(WahooOpts{
		AuthURL:  cfg.AuthURL,
		TokenURL: cfg.TokenURL,
		Scopes:   cfg.Scopes,
	})
}

func (s *WahooService) Name() string {
	return "Wahoo"
}

func (s *WahooService) oauthConfig(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       s.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.authURL,
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (s *WahooService) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// AuthURL returns the authorization URL the browser should be sent to.
func (s *WahooService) AuthURL(creds Credentials, state string) string {
	return s.oauthConfig(creds).AuthCodeURL(state)
}

// Exchange performs a single authorization_code grant against the token endpoint.
//
// The request is a form-encoded POST carrying the client id and secret in the body.
// Failures are returned as [*ExchangeError]; there are no retries.
func (s *WahooService) Exchange(ctx context.Context, code string, creds Credentials) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	token, err := s.oauthConfig(creds).Exchange(s.context(ctx), code)
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	return token, nil
}

func classifyExchangeError(err error) *ExchangeError {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		ee := &ExchangeError{
			Kind:        shared.KindProviderError,
			Code:        re.ErrorCode,
			Description: re.ErrorDescription,
			Cause:       err,
		}
		if re.Response != nil {
			ee.StatusCode = re.Response.StatusCode
		}
		if ee.Code == "" && ee.Description == "" {
			ee.Code, ee.Description = parseErrorBody(re.Body)
		}
		return ee
	}

	var ue *url.Error
	var ne net.Error
	if errors.As(err, &ue) || errors.As(err, &ne) {
		return &ExchangeError{Kind: shared.KindTransportFailure, Cause: err}
	}

	// 2xx without a usable token
	return &ExchangeError{
		Kind:  shared.KindProviderError,
		Code:  "invalid_response",
		Cause: err,
	}
}

// parseErrorBody pulls error/error_description out of a JSON error body that oauth2 did not decode.
func parseErrorBody(body []byte) (string, string) {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", ""
	}
	if payload.ErrorDescription == "" {
		payload.ErrorDescription = payload.Message
	}
	return payload.Error, payload.ErrorDescription
}

// WahooUser is the subset of the /v1/user profile used to confirm a token works.
type WahooUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// VerifyToken fetches the user profile with the given access token.
func (s *WahooService) VerifyToken(ctx context.Context, accessToken string) (*WahooUser, error) {
	if accessToken == "" {
		return nil, shared.ErrMissingCredentials
	}

	client := oauth2.NewClient(s.context(ctx), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &ExchangeError{Kind: shared.KindTransportFailure, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code, desc := parseErrorBody(body)
		return nil, &ExchangeError{
			Kind:        shared.KindProviderError,
			Code:        code,
			Description: desc,
			StatusCode:  resp.StatusCode,
			Cause:       fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode),
		}
	}

	var user WahooUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}
	return &user, nil
}
