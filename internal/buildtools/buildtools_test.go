package buildtools

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func TestExtractScriptRef(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		want   string
		wantOK bool
	}{
		{
			name:   "vite build",
			doc:    `<html><head><script type="module" crossorigin src="/assets/index-Bq3x9.js"></script></head></html>`,
			want:   "/assets/index-Bq3x9.js",
			wantOK: true,
		},
		{
			name:   "single quoted attributes",
			doc:    `<script src='/assets/index-a.js' type='module'></script>`,
			want:   "/assets/index-a.js",
			wantOK: true,
		},
		{
			name:   "first module script wins",
			doc:    `<script src="/legacy.js"></script><script type="module" src="/assets/one.js"></script><script type="module" src="/assets/two.js"></script>`,
			want:   "/assets/one.js",
			wantOK: true,
		},
		{
			name:   "inline module",
			doc:    `<script type="module">import "/x.js"</script>`,
			wantOK: false,
		},
		{
			name:   "no scripts",
			doc:    `<html><body><p>hi</p></body></html>`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractScriptRef(tt.doc)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractScriptRef() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWriteScriptRef(t *testing.T) {
	dist := t.TempDir()
	index := filepath.Join(dist, "index.html")
	if err := os.WriteFile(index, []byte(`<script type="module" src="/assets/index-abc.js"></script>`), 0644); err != nil {
		t.Fatalf("writing index: %v", err)
	}

	ref, err := WriteScriptRef(dist, ".script-ref.json", true)
	if err != nil {
		t.Fatalf("WriteScriptRef() error: %v", err)
	}
	if ref.Src != "/assets/index-abc.js" || ref.Fallback || !ref.IndexRemoved {
		t.Errorf("unexpected result: %+v", ref)
	}

	data, err := os.ReadFile(filepath.Join(dist, ".script-ref.json"))
	if err != nil {
		t.Fatalf("reading script ref: %v", err)
	}
	if got := gjson.GetBytes(data, "scriptSrc").String(); got != "/assets/index-abc.js" {
		t.Errorf("scriptSrc = %q", got)
	}
	if _, err := os.Stat(index); !os.IsNotExist(err) {
		t.Error("index.html should have been removed")
	}

	if _, err := WriteScriptRef(dist, ".script-ref.json", true); !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound on second run, got %v", err)
	}
}

func TestWriteScriptRefFallback(t *testing.T) {
	dist := t.TempDir()
	index := filepath.Join(dist, "index.html")
	if err := os.WriteFile(index, []byte(`<html><body></body></html>`), 0644); err != nil {
		t.Fatalf("writing index: %v", err)
	}

	ref, err := WriteScriptRef(dist, ".script-ref.json", false)
	if err != nil {
		t.Fatalf("WriteScriptRef() error: %v", err)
	}
	if ref.Src != DefaultScriptSrc || !ref.Fallback || ref.IndexRemoved {
		t.Errorf("unexpected result: %+v", ref)
	}
	if _, err := os.Stat(index); err != nil {
		t.Error("index.html should be kept without removeIndex")
	}
}

const manifestFixture = `{
  "accountAssociation": {
    "header": "old",
    "payload": "old",
    "signature": "old"
  },
  "miniapp": {
    "version": "1",
    "name": "Based House Collection",
    "homeUrl": "https://kismet-miniapp-2025.vercel.app"
  }
}
`

func TestUpdateManifest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "farcaster.json")
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(manifestPath, []byte(manifestFixture), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	env := "FARCASTER_HEADER=\"eyJoZWFkZXIi\"\nFARCASTER_PAYLOAD='eyJkb21haW4i'\nFARCASTER_SIGNATURE=MHhhYmNk\n"
	if err := os.WriteFile(envPath, []byte(env), 0644); err != nil {
		t.Fatalf("writing env: %v", err)
	}

	if err := UpdateManifest(manifestPath, envPath); err != nil {
		t.Fatalf("UpdateManifest() error: %v", err)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	for path, want := range map[string]string{
		"accountAssociation.header":    "eyJoZWFkZXIi",
		"accountAssociation.payload":   "eyJkb21haW4i",
		"accountAssociation.signature": "MHhhYmNk",
		"miniapp.name":                 "Based House Collection",
		"miniapp.homeUrl":              "https://kismet-miniapp-2025.vercel.app",
	} {
		if got := gjson.GetBytes(data, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestUpdateManifestMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "farcaster.json")
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(manifestPath, []byte(manifestFixture), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	if err := os.WriteFile(envPath, []byte("FARCASTER_HEADER=abc\n"), 0644); err != nil {
		t.Fatalf("writing env: %v", err)
	}

	if err := UpdateManifest(manifestPath, envPath); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	data, _ := os.ReadFile(manifestPath)
	if string(data) != manifestFixture {
		t.Error("manifest must be untouched when credentials are missing")
	}
}
