package buildtools

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Credential variables produced by the manifest signing step
const (
	EnvFarcasterHeader    = "FARCASTER_HEADER"
	EnvFarcasterPayload   = "FARCASTER_PAYLOAD"
	EnvFarcasterSignature = "FARCASTER_SIGNATURE"
)

// ErrMissingCredentials is returned when the env file lacks any of the
// account association variables.
var ErrMissingCredentials = errors.New("missing farcaster account association credentials")

// UpdateManifest copies the account association credentials from envPath
// into the farcaster.json manifest at manifestPath. Every other key of the
// manifest is preserved.
func UpdateManifest(manifestPath, envPath string) error {
	env, err := godotenv.Read(envPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", envPath, err)
	}

	var missing []string
	for _, key := range []string{EnvFarcasterHeader, EnvFarcasterPayload, EnvFarcasterSignature} {
		if strings.TrimSpace(env[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("manifest %s is not valid JSON", manifestPath)
	}

	manifest := string(data)
	for path, value := range map[string]string{
		"accountAssociation.header":    env[EnvFarcasterHeader],
		"accountAssociation.payload":   env[EnvFarcasterPayload],
		"accountAssociation.signature": env[EnvFarcasterSignature],
	} {
		manifest, err = sjson.Set(manifest, path, value)
		if err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	if err := os.WriteFile(manifestPath, pretty.Pretty([]byte(manifest)), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
