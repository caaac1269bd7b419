package providers

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// localAdapter registers files that an earlier intake step already staged.
// UploadFile performs no I/O: it echoes the staged URL under the computed
// destination path. It is also the factory's safe default for unknown
// provider names.
type localAdapter struct {
	baseDir string
}

func newLocal(settings *LocalSettings) *localAdapter {
	a := &localAdapter{}
	if settings != nil {
		a.baseDir = settings.BaseDir
	}
	return a
}

func (a *localAdapter) Provider() Provider { return ProviderLocal }

func (a *localAdapter) Root() string { return "/" }

// Connect is a no-op handshake; local storage needs no authorization.
func (a *localAdapter) Connect(ctx context.Context) (AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Provider: ProviderLocal}, nil
}

// ListFolders lists directories under the base dir when one is configured;
// otherwise it reports no children.
func (a *localAdapter) ListFolders(ctx context.Context, dir string) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.baseDir == "" {
		return []Folder{}, nil
	}

	clean := filepath.Clean("/" + dir)
	entries, err := os.ReadDir(filepath.Join(a.baseDir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return []Folder{}, nil
		}
		return nil, err
	}

	out := make([]Folder, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		out = append(out, Folder{
			ID:   path.Join(clean, entry.Name()),
			Name: entry.Name(),
			Type: "folder",
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (a *localAdapter) UploadFile(ctx context.Context, file File, destinationPath string) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}
	return UploadResult{
		URL:  file.URL,
		Path: path.Join(destinationPath, file.Name),
	}, nil
}

var _ Adapter = (*localAdapter)(nil)
