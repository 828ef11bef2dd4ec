package main

import (
	"errors"
	"fmt"

	"kismet/internal/buildtools"
	"kismet/internal/config"

	"github.com/spf13/cobra"
)

var (
	scriptRefDist   string
	scriptRefRemove bool

	manifestPath string
	manifestEnv  string
)

var scriptRefCmd = &cobra.Command{
	Use:   "scriptref",
	Short: "Record the entry script of the build and optionally drop dist/index.html",
	Long: `Reads dist/index.html, writes the src of its module script to the script
reference file used by the inline template provider and, with --remove-index,
removes the built index so every document request is served by the preview
service.`,
	Args: cobra.NoArgs,
	RunE: runScriptRef,
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Copy FARCASTER_* credentials from .env into farcaster.json",
	Args:  cobra.NoArgs,
	RunE:  runManifest,
}

func init() {
	scriptRefCmd.Flags().StringVar(&scriptRefDist, "dist", "", "build output directory (defaults to template.dist_dir)")
	scriptRefCmd.Flags().BoolVar(&scriptRefRemove, "remove-index", false, "remove dist/index.html after extraction")

	manifestCmd.Flags().StringVar(&manifestPath, "manifest", "public/.well-known/farcaster.json", "manifest to update")
	manifestCmd.Flags().StringVar(&manifestEnv, "env", ".env", "env file holding the credentials")
}

func runScriptRef(cmd *cobra.Command, args []string) error {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return err
	}
	tc := cfg.Template
	if scriptRefDist != "" {
		tc.DistDir = scriptRefDist
	}

	ref, err := buildtools.WriteScriptRef(tc.DistDir, tc.ScriptRefFile, scriptRefRemove)
	if errors.Is(err, buildtools.ErrIndexNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "dist/index.html not found (already removed or not built)")
		return nil
	}
	if err != nil {
		return err
	}

	if ref.Fallback {
		fmt.Fprintf(cmd.OutOrStdout(), "Could not extract script reference, using fallback: %s\n", ref.Src)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Extracted script reference: %s\n", ref.Src)
	}
	if ref.IndexRemoved {
		fmt.Fprintln(cmd.OutOrStdout(), "Removed dist/index.html")
	}
	return nil
}

func runManifest(cmd *cobra.Command, args []string) error {
	err := buildtools.UpdateManifest(manifestPath, manifestEnv)
	if errors.Is(err, buildtools.ErrMissingCredentials) {
		return fmt.Errorf("%w\nset FARCASTER_HEADER, FARCASTER_PAYLOAD and FARCASTER_SIGNATURE in %s", err, manifestEnv)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated accountAssociation in %s\n", manifestPath)
	return nil
}
