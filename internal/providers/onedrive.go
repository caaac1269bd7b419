package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const graphAPIBase = "https://graph.microsoft.com/v1.0"

// oneDriveAdapter talks to the Microsoft Graph drive API using path-based
// addressing under the signed-in user's drive root.
type oneDriveAdapter struct {
	client *http.Client
}

func newOneDrive(creds *OAuthCredentials, opts Options) *oneDriveAdapter {
	return &oneDriveAdapter{
		client: oauthHTTPClient(microsoftOAuthConfig(opts), creds, opts.httpClient()),
	}
}

func (a *oneDriveAdapter) Provider() Provider { return ProviderOneDrive }

func (a *oneDriveAdapter) Root() string { return "/" }

func (a *oneDriveAdapter) Connect(ctx context.Context) (AuthResult, error) {
	var me struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := doJSON(ctx, a.client, http.MethodGet, graphAPIBase+"/me", nil, &me); err != nil {
		return AuthResult{}, providerErr(ProviderOneDrive, "connect", err)
	}

	email := me.Mail
	if email == "" {
		email = me.UserPrincipalName
	}
	return AuthResult{Provider: ProviderOneDrive, Email: email}, nil
}

func (a *oneDriveAdapter) ListFolders(ctx context.Context, dir string) ([]Folder, error) {
	var listing struct {
		Value []struct {
			ID     string          `json:"id"`
			Name   string          `json:"name"`
			Folder json.RawMessage `json:"folder"`
		} `json:"value"`
	}
	if err := doJSON(ctx, a.client, http.MethodGet, a.childrenURL(dir), nil, &listing); err != nil {
		return nil, providerErr(ProviderOneDrive, "list folders", err)
	}

	out := make([]Folder, 0, len(listing.Value))
	for _, item := range listing.Value {
		if item.Folder == nil {
			continue
		}
		out = append(out, Folder{ID: item.ID, Name: item.Name, Type: "folder"})
	}
	return out, nil
}

func (a *oneDriveAdapter) UploadFile(ctx context.Context, file File, destinationPath string) (UploadResult, error) {
	src, err := openSource(ctx, a.client, file.URL)
	if err != nil {
		return UploadResult{}, providerErr(ProviderOneDrive, "open source", err)
	}
	defer src.Close()

	itemPath := strings.Trim(destinationPath, "/") + "/" + file.Name
	u := graphAPIBase + "/me/drive/root:/" + escapeGraphPath(itemPath) + ":/content"

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, src)
	if err != nil {
		return UploadResult{}, providerErr(ProviderOneDrive, "upload", err)
	}
	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := a.client.Do(req)
	if err != nil {
		return UploadResult{}, providerErr(ProviderOneDrive, "upload", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, providerErr(ProviderOneDrive, "upload", httpStatusError(resp))
	}

	var created struct {
		ID     string `json:"id"`
		WebURL string `json:"webUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return UploadResult{}, providerErr(ProviderOneDrive, "upload", err)
	}

	return UploadResult{
		ID:   created.ID,
		URL:  created.WebURL,
		Path: strings.TrimSuffix(destinationPath, "/") + "/" + file.Name,
	}, nil
}

func (a *oneDriveAdapter) childrenURL(dir string) string {
	trimmed := strings.Trim(strings.TrimSpace(dir), "/")
	if trimmed == "" {
		return graphAPIBase + "/me/drive/root/children"
	}
	return graphAPIBase + "/me/drive/root:/" + escapeGraphPath(trimmed) + ":/children"
}

func escapeGraphPath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

var _ Adapter = (*oneDriveAdapter)(nil)
