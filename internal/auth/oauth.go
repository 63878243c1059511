package auth

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrOAuthNotConfigured is returned when a login URL is requested for a
// provider whose client id has not been configured.
var ErrOAuthNotConfigured = errors.New("oauth provider not configured")

// OAuthConfig holds client identifiers for the supported OAuth providers.
// The token-exchange callbacks are intentionally not implemented; only the
// redirect URLs are constructed here.
type OAuthConfig struct {
	GoogleClientID    string
	MicrosoftClientID string
	MicrosoftTenantID string
}

// OAuth builds provider login URLs from configured client ids.
type OAuth struct {
	cfg OAuthConfig
}

// NewOAuth creates an OAuth URL builder. An empty Microsoft tenant falls back
// to the multi-tenant "common" endpoint.
func NewOAuth(cfg OAuthConfig) *OAuth {
	if cfg.MicrosoftTenantID == "" {
		cfg.MicrosoftTenantID = "common"
	}
	return &OAuth{cfg: cfg}
}

// GoogleLoginURL returns the Google authorization URL for the redirect URI.
func (o *OAuth) GoogleLoginURL(redirectURI string) (string, error) {
	if o.cfg.GoogleClientID == "" {
		return "", ErrOAuthNotConfigured
	}
	params := url.Values{
		"client_id":     {o.cfg.GoogleClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return "https://accounts.google.com/o/oauth2/v2/auth?" + params.Encode(), nil
}

// MicrosoftLoginURL returns the Microsoft authorization URL for the redirect URI.
func (o *OAuth) MicrosoftLoginURL(redirectURI string) (string, error) {
	if o.cfg.MicrosoftClientID == "" {
		return "", ErrOAuthNotConfigured
	}
	params := url.Values{
		"client_id":     {o.cfg.MicrosoftClientID},
		"response_type": {"code"},
		"redirect_uri":  {redirectURI},
		"response_mode": {"query"},
		"scope":         {"openid email profile offline_access"},
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/authorize?%s",
		o.cfg.MicrosoftTenantID, params.Encode()), nil
}
