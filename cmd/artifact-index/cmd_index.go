package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/internal/registry"
	"github.com/gcbaptista/go-artifact-index/services"
)

func openLocal(dir string) (*registry.Registry, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return registry.New(filepath.Base(abs), abs, indexPathFor(abs), logger, nil), nil
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	r, err := openLocal(args[0])
	if err != nil {
		return err
	}

	report, err := r.Regenerate(cmd.Context(), nil)
	if err != nil {
		return err
	}
	if err := r.Save(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %d artifacts into %s\n", report.Indexed, r.IndexPath())
	if report.Skipped > 0 {
		fmt.Fprintf(out, "Skipped %d manifests:\n", report.Skipped)
		for _, problem := range report.Problems {
			fmt.Fprintf(out, "  %s\n", problem)
		}
	}
	return nil
}

func runFind(cmd *cobra.Command, args []string) error {
	r, err := openLocal(args[0])
	if err != nil {
		return err
	}

	if err := r.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Persisted index unusable, indexing manifests", zap.Error(err))
		}
		if _, err := r.Regenerate(cmd.Context(), nil); err != nil {
			return err
		}
	}

	result, err := r.Search(query)
	if err != nil {
		return err
	}
	return printHits(cmd, result)
}

func printHits(cmd *cobra.Command, result *services.SearchResult) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SHORT NAME\tVERSION\tID\tSUMMARY")
	for _, hit := range result.Hits {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			hit.ShortName, hit.Artifact.Version, hit.Artifact.ID, strings.TrimSpace(hit.Artifact.Summary))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(result.Suggestions) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No artifact named '%s', did you mean: %s?\n", query.ID, strings.Join(result.Suggestions, ", "))
	}
	if result.Total > len(result.Hits) {
		fmt.Fprintf(cmd.OutOrStdout(), "(%d of %d shown)\n", len(result.Hits), result.Total)
	}
	return nil
}
