package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubYtdlp writes a shell script that behaves like yt-dlp: it resolves the
// -o template and creates an mp4 there.
func stubYtdlp(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
tmpl=""
while [ $# -gt 1 ]; do
  if [ "$1" = "-o" ]; then tmpl="$2"; fi
  shift
done
out=$(printf '%s' "$tmpl" | sed 's/%(ext)s/mp4/')
printf 'fake video bytes' > "$out"
`
	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestDownloaderService_Download(t *testing.T) {
	s := &DownloaderService{binaryPath: stubYtdlp(t)}

	outDir := filepath.Join(t.TempDir(), "job")
	path, err := s.Download(context.Background(), "https://example.com/v", outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "video.mp4"), path)
	assert.FileExists(t, path)
}

func TestDownloaderService_DownloadFailure(t *testing.T) {
	fail := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(fail, []byte("#!/bin/sh\necho 'ERROR: bad url' >&2\nexit 1\n"), 0755))

	s := &DownloaderService{binaryPath: fail}
	_, err := s.Download(context.Background(), "https://example.com/v", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "yt-dlp failed")
	assert.Contains(t, err.Error(), "bad url")
}

func TestDownloaderService_DownloadAll(t *testing.T) {
	s := &DownloaderService{binaryPath: stubYtdlp(t)}
	root := t.TempDir()

	requests := []DownloadRequest{
		{URL: "https://example.com/a", OutDir: filepath.Join(root, "a")},
		{URL: "https://example.com/b", OutDir: filepath.Join(root, "b")},
		{URL: "https://example.com/c", OutDir: filepath.Join(root, "c")},
	}

	var lastCompleted int
	outcomes := s.DownloadAll(context.Background(), requests, func(completed, total int) {
		lastCompleted = completed
		assert.Equal(t, 3, total)
	})

	require.Len(t, outcomes, 3)
	for i, outcome := range outcomes {
		assert.NoError(t, outcome.Err)
		assert.Equal(t, requests[i].URL, outcome.URL, "outcomes keep request order")
		assert.FileExists(t, outcome.Path)
	}
	assert.Equal(t, 3, lastCompleted)
}

func TestDownloaderService_DownloadAllPartialFailure(t *testing.T) {
	s := &DownloaderService{binaryPath: stubYtdlp(t)}

	// An unwritable OutDir makes that one request fail
	root := t.TempDir()
	requests := []DownloadRequest{
		{URL: "https://example.com/a", OutDir: filepath.Join(root, "ok")},
		{URL: "https://example.com/b", OutDir: filepath.Join(root, "blocked", "\x00bad")},
	}

	outcomes := s.DownloadAll(context.Background(), requests, nil)
	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)

	ok, failed := Tally(outcomes)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
}
