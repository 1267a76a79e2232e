package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wahoodash/internal/services"
	"github.com/desertthunder/wahoodash/internal/shared"
)

const (
	CallbackPath  = "/api/wahoo_callback"
	AuthorizePath = "/api/wahoo/authorize"
)

// CallbackHandler completes the OAuth2 authorization code flow.
//
// The browser is redirected back to the application with either ?token= or ?error=oauth_failed&details=.
// Exactly one exchange is attempted per request.
type CallbackHandler struct {
	config    shared.WahooConfig
	appURL    string
	exchanger services.TokenExchanger
	logger    *log.Logger
}

// NewCallbackHandler creates a new [CallbackHandler]. appURL is the redirect target base.
func NewCallbackHandler(cfg shared.WahooConfig, appURL string, exchanger services.TokenExchanger, logger *log.Logger) *CallbackHandler {
	if appURL == "" {
		appURL = shared.DefaultAppURL
	}
	return &CallbackHandler{
		config:    cfg,
		appURL:    strings.TrimRight(appURL, "/"),
		exchanger: exchanger,
		logger:    shared.WithLogger(logger, "handler", "callback"),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET " + CallbackPath}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if missing := h.config.Missing(); len(missing) > 0 {
		h.logger.Error("oauth configuration incomplete", "missing", missing)
		writePage(w, http.StatusInternalServerError, page{
			Title:   "Configuration Error",
			Message: "OAuth configuration is incomplete. Check the server environment.",
			Detail:  "missing: " + strings.Join(missing, ", "),
		})
		return
	}

	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		details := q.Get("error_description")
		if details == "" {
			details = providerErr
		}
		h.logger.Warn("oauth provider returned an error", "error", providerErr)
		h.redirect(w, r, url.Values{"error": {"oauth_failed"}, "details": {details}})
		return
	}

	code := q.Get("code")
	if code == "" {
		h.logger.Warn("oauth callback without code")
		writePage(w, http.StatusBadRequest, page{
			Title:   "Authorization Failed",
			Message: "No authorization code was received from Wahoo.",
		})
		return
	}

	h.logger.Info("oauth code received")
	token, err := h.exchanger.Exchange(r.Context(), code, services.CredentialsFrom(h.config))
	if err != nil {
		details := err.Error()
		var ee *services.ExchangeError
		if errors.As(err, &ee) {
			details = ee.Detail()
			h.logger.Error("oauth exchange failed", "kind", ee.Kind, "code", ee.Code, "status", ee.StatusCode)
		} else {
			h.logger.Error("oauth exchange failed", "err", err)
		}
		h.redirect(w, r, url.Values{"error": {"oauth_failed"}, "details": {details}})
		return
	}

	h.logger.Info("oauth exchange succeeded", "token_type", token.TokenType)
	h.redirect(w, r, url.Values{"token": {token.AccessToken}})
}

func (h *CallbackHandler) redirect(w http.ResponseWriter, r *http.Request, q url.Values) {
	http.Redirect(w, r, h.appURL+"/?"+q.Encode(), http.StatusFound)
}

// AuthorizeHandler redirects the browser to the Wahoo authorization page.
type AuthorizeHandler struct {
	config     shared.WahooConfig
	authorizer services.Authorizer
	logger     *log.Logger
	newState   func() string
}

// NewAuthorizeHandler creates a new [AuthorizeHandler].
func NewAuthorizeHandler(cfg shared.WahooConfig, authorizer services.Authorizer, logger *log.Logger) *AuthorizeHandler {
	return &AuthorizeHandler{
		config:     cfg,
		authorizer: authorizer,
		logger:     shared.WithLogger(logger, "handler", "authorize"),
		newState:   shared.GenerateID,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthorizeHandler) Routes() []string {
	return []string{"GET " + AuthorizePath}
}

func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if missing := h.config.Missing(); len(missing) > 0 {
		h.logger.Error("oauth configuration incomplete", "missing", missing)
		writePage(w, http.StatusInternalServerError, page{
			Title:   "Configuration Error",
			Message: "OAuth configuration is incomplete. Check the server environment.",
			Detail:  "missing: " + strings.Join(missing, ", "),
		})
		return
	}

	target := h.authorizer.AuthURL(services.CredentialsFrom(h.config), h.newState())
	http.Redirect(w, r, target, http.StatusFound)
}
