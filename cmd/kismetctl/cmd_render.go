package main

import (
	"context"
	"fmt"
	"io"

	"kismet/internal/config"
	"kismet/internal/document"
	"kismet/internal/metatags"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	renderArtist   string
	renderNoOrigin bool
	renderList     bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the document served for an artist",
	Long: `Acquires the base template the same way the server does and prints the
document served for --artist (or the default document). Tags that could not
be rewritten are reported on stderr.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderArtist, "artist", "", "artist id")
	renderCmd.Flags().BoolVar(&renderNoOrigin, "no-origin", false, "skip fetching the deployed document")
	renderCmd.Flags().BoolVar(&renderList, "list", false, "list artist ids and exit")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return err
	}
	if renderNoOrigin {
		cfg.Template.DisableOrigin = true
	}
	site := cfg.BuildSite()

	if renderList {
		for _, id := range site.ArtistIDs() {
			artist, _ := site.Artist(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", id, artist.Name)
		}
		return nil
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)

	return render(cmd.Context(), cmd.OutOrStdout(), logger, cfg, site, renderArtist)
}

func render(ctx context.Context, out io.Writer, logger *logrus.Logger, cfg *config.Config, site *config.Site, artistID string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	tmpl := document.Standard(cfg, site, logger).Acquire(ctx)
	logger.WithField("provider", tmpl.Source).Info("Template acquired")

	artist, ok := site.Artist(artistID)
	if !ok {
		if artistID != "" {
			logger.WithField("artist", artistID).Warn("Unknown artist, printing the default document")
		}
		_, err := io.WriteString(out, tmpl.HTML)
		return err
	}

	result, err := metatags.Rewrite(tmpl.HTML, metatags.ArtistValues(site, artist))
	if err != nil {
		return err
	}
	for _, miss := range result.Misses {
		logger.WithFields(logrus.Fields{
			"tag":     miss.Tag,
			"matches": miss.Matches,
		}).Warn("Managed tag not rewritten")
	}

	_, err = io.WriteString(out, result.HTML)
	return err
}
