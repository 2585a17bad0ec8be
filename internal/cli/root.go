// Package cli implements the journal-render commands, which render stored
// records from JSON fixtures without a database or HTTP server.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/practicum-journal-api/internal/service"
	"github.com/noah-isme/practicum-journal-api/pkg/export"
)

type options struct {
	locale   string
	timezone string
	outDir   string
	verbose  bool
}

// NewRootCmd builds the top-level command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "journal-render",
		Short:         "Render observation and journal fixtures to documents",
		Long:          "Reads records exported as JSON and writes the same PDF and table documents the API serves.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.locale, "locale", "l", "de", "Label locale: de or en")
	root.PersistentFlags().StringVar(&opts.timezone, "timezone", "UTC", "IANA zone used for printed dates")
	root.PersistentFlags().StringVarP(&opts.outDir, "out", "o", ".", "Output directory")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log rendering details to stderr")

	root.AddCommand(newObservationCmd(opts), newJournalCmd(opts), newListCmd(opts))
	return root
}

func (o *options) documents(store *fixtureStore) (*service.DocumentService, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", o.timezone, err)
	}
	logr := zap.NewNop()
	if o.verbose {
		if logr, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}
	renderer := export.NewDocumentRenderer(export.RendererConfig{
		Labels:   export.LabelsFor(o.locale),
		Location: loc,
	})
	return service.NewDocumentService(store, journalFixtures{store}, renderer, nil, logr, o.locale), nil
}
