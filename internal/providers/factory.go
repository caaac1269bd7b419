package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Options carries the shared dependencies adapters need: OAuth client
// settings per provider and an HTTP client for API calls.
type Options struct {
	HTTPClient *http.Client

	GoogleClientID      string
	GoogleClientSecret  string
	DropboxClientID     string
	DropboxClientSecret string
	MSClientID          string
	MSClientSecret      string
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Factory builds adapters from provider names and stored credentials.
type Factory struct {
	Opts Options
}

// New resolves a provider name to an adapter. Unknown or missing names
// resolve to the Local adapter; this is a deliberate safe default, never an
// error.
func (f *Factory) New(name string, creds Credentials) Adapter {
	switch normalizeProvider(name) {
	case ProviderGoogleDrive:
		return newGoogleDrive(creds.GoogleDrive, f.Opts)
	case ProviderDropbox:
		return newDropbox(creds.Dropbox, f.Opts)
	case ProviderOneDrive:
		return newOneDrive(creds.OneDrive, f.Opts)
	default:
		return newLocal(creds.Local)
	}
}

func normalizeProvider(name string) Provider {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "google drive", "googledrive", "gdrive", "drive":
		return ProviderGoogleDrive
	case "dropbox":
		return ProviderDropbox
	case "onedrive", "one drive":
		return ProviderOneDrive
	default:
		return ProviderLocal
	}
}

// googleOAuthConfig builds the Drive OAuth client config the same way the
// sign-in flow does for user identity.
func googleOAuthConfig(opts Options) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     opts.GoogleClientID,
		ClientSecret: opts.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/drive.file"},
		Endpoint:     google.Endpoint,
	}
}

func dropboxOAuthConfig(opts Options) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     opts.DropboxClientID,
		ClientSecret: opts.DropboxClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.dropbox.com/oauth2/authorize",
			TokenURL: "https://api.dropboxapi.com/oauth2/token",
		},
	}
}

func microsoftOAuthConfig(opts Options) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     opts.MSClientID,
		ClientSecret: opts.MSClientSecret,
		Scopes:       []string{"Files.ReadWrite", "User.Read"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL: "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		},
	}
}

// oauthHTTPClient returns a client that injects and refreshes the stored
// token via the provider's token endpoint.
func oauthHTTPClient(cfg *oauth2.Config, creds *OAuthCredentials, base *http.Client) *http.Client {
	if creds == nil {
		return base
	}
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return cfg.Client(ctx, token)
}
