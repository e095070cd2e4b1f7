package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/geneontology/gopreprocess/internal/gaf"
	"github.com/geneontology/gopreprocess/internal/pipeline"
	"github.com/geneontology/gopreprocess/internal/storage"
)

var (
	sourceTaxon    string
	targetTaxon    string
	proteinTaxon   string
	namespaces     []string
	orthoReference string
	isoform        bool
	refresh        bool
	protein        bool

	mergeDir     string
	mergePattern string
	mergeOut     string

	reportRun   string
	reportLimit int
)

func init() {
	convertCmd.Flags().StringVar(&sourceTaxon, "source-taxon", "", "Source organism, e.g. NCBITaxon:10116")
	convertCmd.Flags().StringVar(&targetTaxon, "target-taxon", "NCBITaxon:10090", "Target organism")
	convertCmd.Flags().StringSliceVar(&namespaces, "namespaces", nil, "Subject namespaces to keep (default from config)")
	convertCmd.Flags().StringVar(&orthoReference, "ortho-reference", "", "GO_REF stamped on transferred annotations (default from config)")
	convertCmd.Flags().BoolVar(&refresh, "refresh", false, "Download reference files even when cached")
	_ = convertCmd.MarkFlagRequired("source-taxon")

	convertProteinCmd.Flags().StringVar(&proteinTaxon, "target-taxon", "", "Organism to convert (default protein.target_taxon)")
	convertProteinCmd.Flags().BoolVar(&isoform, "isoform", false, "Also convert the isoform GAF after the main one")
	convertProteinCmd.Flags().BoolVar(&refresh, "refresh", false, "Download reference files even when cached")

	downloadCmd.Flags().StringVar(&sourceTaxon, "source-taxon", "", "Source organism of an ortholog transfer")
	downloadCmd.Flags().StringVar(&targetTaxon, "target-taxon", "NCBITaxon:10090", "Target organism")
	downloadCmd.Flags().BoolVar(&protein, "protein", false, "Fetch the protein-to-gene inputs instead")
	downloadCmd.Flags().BoolVar(&isoform, "isoform", false, "With --protein, also fetch the isoform GAF")
	downloadCmd.Flags().BoolVar(&refresh, "refresh", false, "Download even when cached")

	mergeCmd.Flags().StringVar(&mergeDir, "dir", "output", "Directory holding the GAF files")
	mergeCmd.Flags().StringVar(&mergePattern, "pattern", "**/*.gaf", "Glob pattern, relative to --dir")
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "Merged output file")
	_ = mergeCmd.MarkFlagRequired("out")

	reportCmd.Flags().StringVar(&reportRun, "run", "", "Run id (default: latest run)")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 20, "Number of skipped transfers to list")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Transfer experimental annotations from a source organism to target orthologs",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()

		ctx, cancel := signalContext()
		defer cancel()

		t := pipeline.NewOrthoTransfer(e.deps(refresh), sourceTaxon, targetTaxon)
		t.Namespaces = namespaces
		t.Reference = orthoReference
		res, err := t.Run(ctx)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var convertProteinCmd = &cobra.Command{
	Use:   "convert-protein",
	Short: "Project protein annotations onto the genes that encode them",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()

		ctx, cancel := signalContext()
		defer cancel()

		results, err := pipeline.RunProtein(ctx, e.deps(refresh), proteinTaxon, isoform)
		for _, res := range results {
			printResult(res)
		}
		return err
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Fetch the reference files a transfer needs into the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()

		ctx, cancel := signalContext()
		defer cancel()

		deps := e.deps(refresh)
		var files map[string]string
		switch {
		case protein:
			files, err = pipeline.DownloadProtein(ctx, deps, "", isoform)
		case sourceTaxon != "":
			files, err = pipeline.NewOrthoTransfer(deps, sourceTaxon, targetTaxon).Download(ctx)
		default:
			return fmt.Errorf("either --source-taxon or --protein is required")
		}
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(files))
		for k := range files {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%-24s %s\n", k, files[k])
		}
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge GAF files into one, keeping a single copy of each header line",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := gaf.Merge(mergeDir, mergePattern, mergeOut)
		if err != nil {
			return err
		}
		fmt.Printf("Merged %d files (%d header lines, %d annotations) into %s\n",
			stats.Files, stats.Headers, stats.Lines, mergeOut)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the rejection buckets and skipped transfers of a stored run",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()
		if e.store == nil {
			return fmt.Errorf("no run database configured")
		}
		return printReport(cmd.Context(), e.store, reportRun, reportLimit)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gopreprocess %s\n", Version)
	},
}

func printResult(res *pipeline.Result) {
	green := color.New(color.FgGreen, color.Bold)
	_, _ = green.Printf("Wrote %d annotations", res.Rows)
	fmt.Printf(" to %s (run %s)\n", res.OutputPath, res.RunID)
	fmt.Printf("  seen=%d passed=%d generated=%d\n", res.Filter.Seen, res.Filter.Passed, res.Generated)
	if len(res.Skips) > 0 {
		yellow := color.New(color.FgYellow)
		for reason, n := range res.Skips {
			_, _ = yellow.Printf("  skipped %s: %d\n", reason, n)
		}
	}
}

func printReport(ctx context.Context, store storage.Store, runID string, limit int) error {
	if runID == "" {
		runs, err := store.ListRuns(ctx, 1)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs recorded")
		}
		runID = runs[0].ID
	}
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	rejections, err := store.RejectionCounts(ctx, runID)
	if err != nil {
		return err
	}
	skips, err := store.Skips(ctx, runID, limit)
	if err != nil {
		return err
	}

	status := color.New(color.FgGreen)
	if run.Status != "ok" {
		status = color.New(color.FgRed)
	}
	fmt.Printf("Run %s (%s %s -> %s) ", run.ID, run.Mode, run.SourceTaxon, run.TargetTaxon)
	_, _ = status.Println(run.Status)
	if run.Error != "" {
		fmt.Printf("  error: %s\n", run.Error)
	}
	if run.OutputPath != "" {
		fmt.Printf("  output: %s\n", run.OutputPath)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tREJECTED")
	buckets := make([]string, 0, len(rejections))
	for b := range rejections {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%d\n", b, rejections[b])
	}
	if len(skips) > 0 {
		fmt.Fprintln(w, "\nREASON\tSUBJECT\tTARGET\tOBJECT")
		for _, s := range skips {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Reason, s.Subject, s.Target, s.Object)
		}
	}
	return w.Flush()
}
