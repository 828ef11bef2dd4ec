package server

import "testing"

func TestValidateQRSize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     int
		wantCode string
	}{
		{"empty uses default", "", 256, ""},
		{"minimum", "64", 64, ""},
		{"maximum", "1024", 1024, ""},
		{"typical", "512", 512, ""},
		{"too small", "63", 0, "SIZE_OUT_OF_RANGE"},
		{"too large", "1025", 0, "SIZE_OUT_OF_RANGE"},
		{"negative", "-256", 0, "SIZE_OUT_OF_RANGE"},
		{"not a number", "large", 0, "INVALID_SIZE_FORMAT"},
		{"float", "256.5", 0, "INVALID_SIZE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, verr := validateQRSize(tt.input)
			if tt.wantCode != "" {
				if verr == nil {
					t.Fatalf("expected %s, got size %d", tt.wantCode, got)
				}
				if verr.Code != tt.wantCode || verr.Field != "size" {
					t.Errorf("unexpected error %+v", verr)
				}
				return
			}
			if verr != nil {
				t.Fatalf("unexpected error %+v", verr)
			}
			if got != tt.want {
				t.Errorf("validateQRSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0B"},
		{512, "< 1KB"},
		{2048, "2KB"},
		{3 * 1024 * 1024, "3MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.input); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestShouldLogRequest(t *testing.T) {
	tests := map[string]bool{
		"/":                    true,
		"/api/index":           true,
		"/health":              false,
		"/assets/index-abc.js": false,
		"/favicon.ico":         false,
	}
	for path, want := range tests {
		if got := shouldLogRequest(path); got != want {
			t.Errorf("shouldLogRequest(%q) = %v, want %v", path, got, want)
		}
	}
}
