package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"
)

const (
	dropboxAPIBase     = "https://api.dropboxapi.com/2"
	dropboxContentBase = "https://content.dropboxapi.com/2"
)

// dropboxAdapter talks to the Dropbox v2 API. Dropbox is path-addressed,
// with the empty string as the root token.
type dropboxAdapter struct {
	client *http.Client
}

func newDropbox(creds *OAuthCredentials, opts Options) *dropboxAdapter {
	return &dropboxAdapter{
		client: oauthHTTPClient(dropboxOAuthConfig(opts), creds, opts.httpClient()),
	}
}

func (a *dropboxAdapter) Provider() Provider { return ProviderDropbox }

func (a *dropboxAdapter) Root() string { return "" }

func (a *dropboxAdapter) Connect(ctx context.Context) (AuthResult, error) {
	var account struct {
		Email string `json:"email"`
	}
	err := doJSON(ctx, a.client, http.MethodPost, dropboxAPIBase+"/users/get_current_account", struct{}{}, &account)
	if err != nil {
		return AuthResult{}, providerErr(ProviderDropbox, "connect", err)
	}
	return AuthResult{Provider: ProviderDropbox, Email: account.Email}, nil
}

func (a *dropboxAdapter) ListFolders(ctx context.Context, dir string) ([]Folder, error) {
	body := map[string]any{"path": normalizeDropboxPath(dir)}

	var listing struct {
		Entries []struct {
			Tag  string `json:".tag"`
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"entries"`
	}
	if err := doJSON(ctx, a.client, http.MethodPost, dropboxAPIBase+"/files/list_folder", body, &listing); err != nil {
		return nil, providerErr(ProviderDropbox, "list folders", err)
	}

	out := make([]Folder, 0, len(listing.Entries))
	for _, e := range listing.Entries {
		if e.Tag != "folder" {
			continue
		}
		out = append(out, Folder{ID: e.ID, Name: e.Name, Type: "folder"})
	}
	return out, nil
}

func (a *dropboxAdapter) UploadFile(ctx context.Context, file File, destinationPath string) (UploadResult, error) {
	src, err := openSource(ctx, a.client, file.URL)
	if err != nil {
		return UploadResult{}, providerErr(ProviderDropbox, "open source", err)
	}
	defer src.Close()

	dest := path.Join(normalizeDropboxPath(destinationPath), file.Name)
	if !strings.HasPrefix(dest, "/") {
		dest = "/" + dest
	}

	uploaded, err := a.contentUpload(ctx, dest, src)
	if err != nil {
		return UploadResult{}, providerErr(ProviderDropbox, "upload", err)
	}

	return UploadResult{
		ID:   uploaded.ID,
		URL:  "https://www.dropbox.com/home" + uploaded.PathDisplay,
		Path: uploaded.PathDisplay,
	}, nil
}

type dropboxFile struct {
	ID          string `json:"id"`
	PathDisplay string `json:"path_display"`
}

func (a *dropboxAdapter) contentUpload(ctx context.Context, dest string, src io.Reader) (dropboxFile, error) {
	arg, err := json.Marshal(map[string]any{
		"path": dest,
		"mode": "add",
		"autorename": true,
	})
	if err != nil {
		return dropboxFile{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dropboxContentBase+"/files/upload", src)
	if err != nil {
		return dropboxFile{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Dropbox-API-Arg", string(arg))

	resp, err := a.client.Do(req)
	if err != nil {
		return dropboxFile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dropboxFile{}, httpStatusError(resp)
	}

	var uploaded dropboxFile
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return dropboxFile{}, err
	}
	return uploaded, nil
}

// normalizeDropboxPath maps "/" and "" to the Dropbox root token and makes
// everything else an absolute path.
func normalizeDropboxPath(p string) string {
	trimmed := strings.Trim(strings.TrimSpace(p), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

var _ Adapter = (*dropboxAdapter)(nil)
