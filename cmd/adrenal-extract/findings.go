// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uab-informatics/adrenal-extract/internal/batch"
	"github.com/uab-informatics/adrenal-extract/internal/findings"
)

var findingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "Index, query, and export extraction findings",
	Long: `Findings manages a local SQLite index built from the findings files that
extract writes under <output>/findings/. Use subcommands to index them,
query them with full-text search and filters, or export them.`,
}

// --- index subcommand ---

var findingsIndexCmd = &cobra.Command{
	Use:   "index [findings-dir]",
	Short: "Ingest findings files into the index",
	Long: `Index reads *-findings.yaml files (default <output>/findings) into a
SQLite database with FTS5 indexing and refreshes export.yaml. Unchanged
files are skipped on subsequent runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFindingsIndex,
}

func runFindingsIndex(cmd *cobra.Command, args []string) error {
	dir := filepath.Join(extractionConfig().OutputDir, batch.FindingsDir)
	if len(args) > 0 {
		dir = args[0]
	}

	store, err := findings.NewStore(storeConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), dir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d findings file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var findingsQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search indexed findings",
	Long: `Query searches the index with FTS5 full-text search over the sentence
and context of each finding, structured filters (document, term, negated,
retained, minimum size), or both.`,
	RunE: runFindingsQuery,
}

func runFindingsQuery(cmd *cobra.Command, args []string) error {
	store, err := findings.NewStore(storeConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		st, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"documents: %d (%d with adrenal section)\nfindings: %d (%d retained, %d negated)\nruns: %d\n",
			st.Documents, st.WithSection, st.Findings, st.RetainedFindings, st.NegatedFindings, st.Runs)
		return nil
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --document, --term, --negated, --retained, or --min-cm")
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatQueryOutput(w io.Writer, results []findings.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-20s  %-12s  %-9s  %-6s  %-7s  %s\n",
		"Rank", "Document", "Term", "Span", "Max cm", "Negated", "Context")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range results {
		doc := r.DocumentID
		if len(doc) > 20 {
			doc = doc[:17] + "..."
		}
		context := r.Context
		if len(context) > 40 {
			context = context[:37] + "..."
		}
		negated := "no"
		if r.Negated {
			negated = "yes"
		}
		fmt.Fprintf(w, "%-4d  %-20s  %-12s  %-9s  %-6.2f  %-7s  %s\n",
			i+1, doc, r.Term, r.Span, r.MaxCM, negated, context)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var findingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed findings to YAML or JSON",
	Long: `Export writes all indexed findings (or a filtered subset) to
<index-dir>/export.yaml or export.json. Supports the same filter flags as
query.`,
	RunE: runFindingsExport,
}

func runFindingsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := findings.NewStore(storeConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) findings.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	documentID, _ := cmd.Flags().GetString("document")
	term, _ := cmd.Flags().GetString("term")
	minCM, _ := cmd.Flags().GetFloat64("min-cm")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := findings.QueryOptions{
		Query:      queryText,
		DocumentID: documentID,
		Term:       term,
		MinCM:      minCM,
		MaxResults: limit,
	}
	if cmd.Flags().Changed("negated") {
		v, _ := cmd.Flags().GetBool("negated")
		opts.Negated = &v
	}
	if cmd.Flags().Changed("retained") {
		v, _ := cmd.Flags().GetBool("retained")
		opts.Retained = &v
	}
	return opts
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search over sentence and context")
	cmd.Flags().String("document", "", "filter by document ID")
	cmd.Flags().String("term", "", "filter by matched term")
	cmd.Flags().Bool("negated", false, "filter by negation (--negated=false for affirmed findings)")
	cmd.Flags().Bool("retained", false, "filter by the size decision (--retained=false for dropped matches)")
	cmd.Flags().Float64("min-cm", 0, "minimum largest dimension in centimeters")
	cmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
}

func init() {
	findingsCmd.PersistentFlags().String("index-dir", "index", "directory holding findings.db and exports")
	findingsCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")
	bindFlag("store.index_dir", findingsCmd.PersistentFlags().Lookup("index-dir"))
	bindFlag("store.max_results", findingsCmd.PersistentFlags().Lookup("max-results"))

	addFilterFlags(findingsQueryCmd)
	findingsQueryCmd.Flags().Bool("json", false, "output results as JSON")
	findingsQueryCmd.Flags().Bool("stats", false, "print index counts instead of results")

	addFilterFlags(findingsExportCmd)
	findingsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	findingsCmd.AddCommand(findingsIndexCmd)
	findingsCmd.AddCommand(findingsQueryCmd)
	findingsCmd.AddCommand(findingsExportCmd)

	rootCmd.AddCommand(findingsCmd)
}
