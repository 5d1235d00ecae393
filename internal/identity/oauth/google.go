// Package oauth implements the federated-provider client used by the Google
// login flow: authorization redirect, code exchange, and userinfo fetch.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/resourcetech/meajuda-auth/internal/account/domain"
	"github.com/resourcetech/meajuda-auth/internal/identity/service"
)

// googleEndpoint avoids pulling the cloud metadata package that
// golang.org/x/oauth2/google drags in; the endpoints are stable.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleClient exchanges an authorization code for tokens and fetches the
// user's OpenID Connect profile.
type GoogleClient struct {
	cfg         *oauth2.Config
	userinfoURL string
}

// NewGoogleClient returns a GoogleClient with the given client credentials and
// the callback URL registered with Google.
func NewGoogleClient(clientID, clientSecret, callbackURL string) *GoogleClient {
	return &GoogleClient{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

// AuthCodeURL returns the provider URL to redirect the user to; state must be
// an unguessable value the callback verifies.
func (c *GoogleClient) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// FetchProfile exchanges the authorization code and fetches the userinfo
// document, returning it as a reconciliation profile.
func (c *GoogleClient) FetchProfile(ctx context.Context, code string) (service.Profile, error) {
	tok, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return service.Profile{}, fmt.Errorf("exchanging authorization code: %w", err)
	}

	resp, err := c.cfg.Client(ctx, tok).Get(c.userinfoURL)
	if err != nil {
		return service.Profile{}, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return service.Profile{}, fmt.Errorf("fetching userinfo: status %d", resp.StatusCode)
	}

	var info struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return service.Profile{}, fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.Email == "" {
		return service.Profile{}, fmt.Errorf("userinfo has no email")
	}

	return service.Profile{
		Provider:  domain.AuthProviderGoogle,
		SubjectID: info.Sub,
		Email:     info.Email,
		Name:      info.Name,
		ImageURL:  info.Picture,
	}, nil
}
