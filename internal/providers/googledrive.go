package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

const (
	driveAPIBase    = "https://www.googleapis.com/drive/v3"
	driveUploadBase = "https://www.googleapis.com/upload/drive/v3"
	driveFolderMime = "application/vnd.google-apps.folder"
)

// googleDriveAdapter talks to the Drive v3 API. Drive addresses folders by
// ID, so path-based destinations are resolved segment by segment, creating
// missing folders along the way.
type googleDriveAdapter struct {
	client *http.Client
}

func newGoogleDrive(creds *OAuthCredentials, opts Options) *googleDriveAdapter {
	return &googleDriveAdapter{
		client: oauthHTTPClient(googleOAuthConfig(opts), creds, opts.httpClient()),
	}
}

func (a *googleDriveAdapter) Provider() Provider { return ProviderGoogleDrive }

func (a *googleDriveAdapter) Root() string { return "root" }

func (a *googleDriveAdapter) Connect(ctx context.Context) (AuthResult, error) {
	var about struct {
		User struct {
			EmailAddress string `json:"emailAddress"`
		} `json:"user"`
	}
	err := doJSON(ctx, a.client, http.MethodGet, driveAPIBase+"/about?fields=user(emailAddress)", nil, &about)
	if err != nil {
		return AuthResult{}, providerErr(ProviderGoogleDrive, "connect", err)
	}
	return AuthResult{Provider: ProviderGoogleDrive, Email: about.User.EmailAddress}, nil
}

func (a *googleDriveAdapter) ListFolders(ctx context.Context, parent string) ([]Folder, error) {
	if strings.TrimSpace(parent) == "" {
		parent = a.Root()
	}

	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", parent, driveFolderMime)
	u := driveAPIBase + "/files?fields=files(id,name)&q=" + url.QueryEscape(query)

	var listing struct {
		Files []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := doJSON(ctx, a.client, http.MethodGet, u, nil, &listing); err != nil {
		return nil, providerErr(ProviderGoogleDrive, "list folders", err)
	}

	out := make([]Folder, 0, len(listing.Files))
	for _, f := range listing.Files {
		out = append(out, Folder{ID: f.ID, Name: f.Name, Type: "folder"})
	}
	return out, nil
}

func (a *googleDriveAdapter) UploadFile(ctx context.Context, file File, destinationPath string) (UploadResult, error) {
	parentID, err := a.resolveFolder(ctx, destinationPath)
	if err != nil {
		return UploadResult{}, providerErr(ProviderGoogleDrive, "resolve folder", err)
	}

	src, err := openSource(ctx, a.client, file.URL)
	if err != nil {
		return UploadResult{}, providerErr(ProviderGoogleDrive, "open source", err)
	}
	defer src.Close()

	created, err := a.multipartUpload(ctx, file, parentID, src)
	if err != nil {
		return UploadResult{}, providerErr(ProviderGoogleDrive, "upload", err)
	}

	return UploadResult{
		ID:   created.ID,
		URL:  created.WebViewLink,
		Path: strings.TrimSuffix(destinationPath, "/") + "/" + file.Name,
	}, nil
}

type driveFile struct {
	ID          string `json:"id"`
	WebViewLink string `json:"webViewLink"`
}

func (a *googleDriveAdapter) multipartUpload(ctx context.Context, file File, parentID string, src io.Reader) (driveFile, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	meta := map[string]any{"name": file.Name}
	if parentID != "" {
		meta["parents"] = []string{parentID}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return driveFile{}, err
	}

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return driveFile{}, err
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return driveFile{}, err
	}

	mediaHeader := textproto.MIMEHeader{}
	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	mediaHeader.Set("Content-Type", contentType)
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return driveFile{}, err
	}
	if _, err := io.Copy(mediaPart, src); err != nil {
		return driveFile{}, err
	}
	if err := writer.Close(); err != nil {
		return driveFile{}, err
	}

	u := driveUploadBase + "/files?uploadType=multipart&fields=id,webViewLink"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return driveFile{}, err
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := a.client.Do(req)
	if err != nil {
		return driveFile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return driveFile{}, httpStatusError(resp)
	}

	var created driveFile
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return driveFile{}, err
	}
	return created, nil
}

// resolveFolder walks the destination path from the root, creating each
// missing segment.
func (a *googleDriveAdapter) resolveFolder(ctx context.Context, destinationPath string) (string, error) {
	parent := a.Root()
	for _, segment := range strings.Split(destinationPath, "/") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		id, err := a.findFolder(ctx, parent, segment)
		if err != nil {
			return "", err
		}
		if id == "" {
			id, err = a.createFolder(ctx, parent, segment)
			if err != nil {
				return "", err
			}
		}
		parent = id
	}
	return parent, nil
}

func (a *googleDriveAdapter) findFolder(ctx context.Context, parent, name string) (string, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and name = '%s' and trashed = false",
		parent, driveFolderMime, strings.ReplaceAll(name, "'", `\'`))
	u := driveAPIBase + "/files?fields=files(id)&q=" + url.QueryEscape(query)

	var listing struct {
		Files []struct {
			ID string `json:"id"`
		} `json:"files"`
	}
	if err := doJSON(ctx, a.client, http.MethodGet, u, nil, &listing); err != nil {
		return "", err
	}
	if len(listing.Files) == 0 {
		return "", nil
	}
	return listing.Files[0].ID, nil
}

func (a *googleDriveAdapter) createFolder(ctx context.Context, parent, name string) (string, error) {
	body := map[string]any{
		"name":     name,
		"mimeType": driveFolderMime,
		"parents":  []string{parent},
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, a.client, http.MethodPost, driveAPIBase+"/files?fields=id", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

var _ Adapter = (*googleDriveAdapter)(nil)
