package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/wahoodash/internal/services"
	"github.com/desertthunder/wahoodash/internal/shared"
	"github.com/urfave/cli/v3"
)

// tokenOutput is what `auth exchange` prints.
type tokenOutput struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

func (r *Runner) credentials() (services.Credentials, error) {
	if missing := r.config.Wahoo.Missing(); len(missing) > 0 {
		return services.Credentials{}, fmt.Errorf("%w: wahoo %s not set", shared.ErrMissingConfig, strings.Join(missing, ", "))
	}
	return services.CredentialsFrom(r.config.Wahoo), nil
}

// AuthURL prints the authorization URL and optionally opens it.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	url := r.wahoo.AuthURL(creds, shared.GenerateID())
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}
	return r.writePlain("%s\n", url)
}

// AuthExchange trades an authorization code for an access token and prints it.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	r.logger.Info("exchanging authorization code")
	token, err := r.wahoo.Exchange(ctx, cmd.String("code"), creds)
	if err != nil {
		return err
	}

	return r.writeJSON(tokenOutput{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, cmd.Bool("pretty"))
}

// AuthVerify checks an access token against the user profile endpoint.
func (r *Runner) AuthVerify(ctx context.Context, cmd *cli.Command) error {
	user, err := r.wahoo.VerifyToken(ctx, strings.TrimSpace(cmd.String("token")))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = "unknown user"
	}
	if user.Email != "" {
		return r.writePlain("✓ Token is valid for %s <%s>\n", name, user.Email)
	}
	return r.writePlain("✓ Token is valid for %s\n", name)
}
