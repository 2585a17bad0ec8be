package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/practicum-journal-api/internal/models"
	"github.com/noah-isme/practicum-journal-api/pkg/export"
)

// rendered is one line of the command's JSON output.
type rendered struct {
	ID       string   `json:"id,omitempty"`
	File     string   `json:"file"`
	Pages    int      `json:"pages,omitempty"`
	Degraded []string `json:"degraded,omitempty"`
}

func newObservationCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "observation FILE",
		Short: "Render observation forms (object or array with entries) to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := newFixtureStore()
			ids, err := store.loadObservations(args[0])
			if err != nil {
				return err
			}
			return renderAll(cmd, opts, store, models.ExportKindObservation, ids)
		},
	}
}

func newJournalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "journal FILE",
		Short: "Render journal entries (object or array) to PDF, one file per entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := newFixtureStore()
			ids, err := store.loadJournals(args[0])
			if err != nil {
				return err
			}
			return renderAll(cmd, opts, store, models.ExportKindJournal, ids)
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var format, semester string
	cmd := &cobra.Command{
		Use:   "list FILE",
		Short: "Export journal entries as a csv, xlsx or pdf table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := newFixtureStore()
			if _, err := store.loadJournals(args[0]); err != nil {
				return err
			}
			documents, err := opts.documents(store)
			if err != nil {
				return err
			}
			result, err := documents.JournalList(cmd.Context(), "", format, models.JournalFilter{SemesterID: semester})
			if err != nil {
				return err
			}
			target, err := writeOutput(opts.outDir, result.Filename, result.Data)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), rendered{File: target})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatCSV, "Table format: csv, xlsx or pdf")
	cmd.Flags().StringVarP(&semester, "semester", "s", "", "Only include entries of this semester")
	return cmd
}

func renderAll(cmd *cobra.Command, opts *options, store *fixtureStore, kind models.ExportKind, ids []string) error {
	documents, err := opts.documents(store)
	if err != nil {
		return err
	}
	names := outputNames{}
	for _, id := range ids {
		doc, err := documents.Render(cmd.Context(), kind, id, "")
		if err != nil {
			return fmt.Errorf("render %s %s: %w", kind, id, err)
		}
		data, err := doc.Bytes()
		if err != nil {
			return err
		}
		target, err := writeOutput(opts.outDir, names.claim(doc.Filename), data)
		if err != nil {
			return err
		}
		if err := report(cmd.OutOrStdout(), rendered{ID: id, File: target, Pages: doc.PageCount(), Degraded: doc.Degraded}); err != nil {
			return err
		}
	}
	return nil
}

// outputNames hands out distinct filenames within one run. Records that share
// a name, such as two journal entries on the same day, get a _2, _3 suffix.
type outputNames map[string]int

func (n outputNames) claim(filename string) string {
	n[filename]++
	count := n[filename]
	if count == 1 {
		return filename
	}
	ext := filepath.Ext(filename)
	candidate := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(filename, ext), count, ext)
	if _, taken := n[candidate]; taken {
		return n.claim(candidate)
	}
	n[candidate] = 1
	return candidate
}

func writeOutput(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	target := filepath.Join(dir, filename)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

func report(w io.Writer, r rendered) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
