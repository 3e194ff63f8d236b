package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studygen/internal/engine"
	"studygen/internal/lineage"
	"studygen/internal/schema"
	"studygen/internal/strategy"
	"studygen/internal/study"
)

// GenerateOptions holds generate command flags.
type GenerateOptions struct {
	Study                string
	Strategy             string
	Count                int
	Seed                 uint64
	Skip                 int
	Lineage              string
	Output               string
	DiscardLineage       bool
	IgnoreCorruptLineage bool
}

// SetSummary is the per-set line of the generate/show payloads.
type SetSummary struct {
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Hash    string `json:"content_hash"`
}

// GenerateResult is the success payload of the generate command.
type GenerateResult struct {
	Study    string       `json:"study"`
	Strategy string       `json:"strategy"`
	Total    int          `json:"total"`
	Retained int          `json:"retained"`
	Added    int          `json:"added"`
	Removed  int          `json:"removed"`
	Sets     []SetSummary `json:"sets"`
	Output   string       `json:"output,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <schema.yaml>",
		Short: "Generate a parameter study and merge it with its lineage",
		Long: `Generate parameter sets from a schema using the chosen strategy, merge
the result against the study's lineage, persist the merged lineage, and
optionally write the materialized dataset file.

Sets that already exist in the lineage keep their ordinals and names; new
sets are appended past the highest ordinal ever assigned. Switching
strategies requires --discard-lineage.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seedSet := cmd.Flags().Changed("seed")
			return runGenerate(rootOpts, opts, args[0], seedSet, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Study, "study", "", "logical study name (required)")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", strategy.NameCartesian,
		fmt.Sprintf("generation strategy %v", strategy.Names()))
	cmd.Flags().IntVar(&opts.Count, "count", 0, "number of sets for space-filling strategies")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for latin_hypercube")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "sobol start index")
	cmd.Flags().StringVar(&opts.Lineage, "lineage", "", "lineage database path")
	cmd.Flags().StringVar(&opts.Output, "output", "", "dataset file to write")
	cmd.Flags().BoolVar(&opts.DiscardLineage, "discard-lineage", false,
		"drop the study's existing lineage before generating")
	cmd.Flags().BoolVar(&opts.IgnoreCorruptLineage, "ignore-corrupt-lineage", false,
		"treat a corrupt lineage record as absent instead of failing")
	cmd.MarkFlagRequired("study")

	return cmd
}

func runGenerate(rootOpts *RootOptions, opts *GenerateOptions, schemaPath string, seedSet bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	s, err := schema.Load(schemaPath)
	if err != nil {
		return reportFailure(formatter, err)
	}
	formatter.VerboseLog("loaded schema %s: %d parameters", schemaPath, s.Len())

	req := engine.Request{
		Schema:    s,
		StudyName: opts.Study,
		Strategy:  opts.Strategy,
		Options: strategy.Options{
			Count:   opts.Count,
			Seed:    opts.Seed,
			SeedSet: seedSet,
			Skip:    opts.Skip,
		},
		OutputPath:           opts.Output,
		DiscardLineage:       opts.DiscardLineage,
		IgnoreCorruptLineage: opts.IgnoreCorruptLineage,
	}

	if opts.Lineage != "" {
		store, err := lineage.Open(opts.Lineage)
		if err != nil {
			return reportFailure(formatter, err)
		}
		defer store.Close()
		req.Lineage = store
	}

	res, err := engine.Generate(cmd.Context(), req)
	if err != nil {
		return reportFailure(formatter, err)
	}

	result := GenerateResult{
		Study:    res.Study.Name,
		Strategy: res.Study.Strategy,
		Total:    len(res.Study.Sets),
		Retained: len(res.Report.Retained),
		Added:    len(res.Report.Added),
		Removed:  len(res.Report.Removed),
		Sets:     summarize(res.Study.Sets),
		Output:   opts.Output,
	}
	if rootOpts.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "study %s: %d sets (%d retained, %d added, %d removed)\n",
		result.Study, result.Total, result.Retained, result.Added, result.Removed)
	if rootOpts.Verbose {
		for _, set := range result.Sets {
			fmt.Fprintf(formatter.Writer, "  %-16s %s\n", set.Name, set.Hash)
		}
	}
	if result.Output != "" {
		fmt.Fprintf(formatter.Writer, "dataset written to %s\n", result.Output)
	}
	return nil
}

func summarize(sets []study.ParameterSet) []SetSummary {
	out := make([]SetSummary, len(sets))
	for i, set := range sets {
		out[i] = SetSummary{Name: set.Name(), Ordinal: set.Ordinal, Hash: set.Hash}
	}
	return out
}
