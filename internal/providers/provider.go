package providers

import (
	"context"
	"fmt"
)

// Provider identifies a storage backend.
type Provider string

const (
	ProviderLocal       Provider = "Local"
	ProviderGoogleDrive Provider = "Google Drive"
	ProviderDropbox     Provider = "Dropbox"
	ProviderOneDrive    Provider = "OneDrive"
)

// AuthResult is the outcome of a connection handshake.
type AuthResult struct {
	Provider Provider `json:"provider"`
	Email    string   `json:"email,omitempty"`
}

// Folder is a child folder listed under a path.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// File describes a staged file to be uploaded to a provider.
type File struct {
	Name      string
	URL       string
	MimeType  string
	SizeBytes int64
}

// UploadResult is returned by a successful upload.
type UploadResult struct {
	ID   string `json:"id,omitempty"`
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Adapter is the uniform capability surface over storage providers. Every
// implementation must provide all three operations; Connect must be safe to
// call repeatedly.
type Adapter interface {
	Provider() Provider

	// Root is the provider's own root token for ListFolders. Callers must
	// not assume a universal root across providers.
	Root() string

	Connect(ctx context.Context) (AuthResult, error)
	ListFolders(ctx context.Context, path string) ([]Folder, error)
	UploadFile(ctx context.Context, file File, destinationPath string) (UploadResult, error)
}

// ProviderError wraps a failed provider call. It is propagated to callers
// unmodified; the core performs no retries.
type ProviderError struct {
	Provider Provider
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(p Provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: p, Op: op, Err: err}
}

// OAuthCredentials is the token material for an OAuth-backed provider.
type OAuthCredentials struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	AccountEmail string `json:"accountEmail,omitempty"`
}

// LocalSettings configures the pass-through local adapter.
type LocalSettings struct {
	BaseDir string `json:"baseDir,omitempty"`
}

// Credentials is the provider-tagged connection payload. Each adapter reads
// only its own section, so a malformed blob for one provider cannot break
// another.
type Credentials struct {
	GoogleDrive *OAuthCredentials `json:"googleDrive,omitempty"`
	Dropbox     *OAuthCredentials `json:"dropbox,omitempty"`
	OneDrive    *OAuthCredentials `json:"oneDrive,omitempty"`
	Local       *LocalSettings    `json:"local,omitempty"`
}
