package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studygen/internal/lineage"
)

// PruneResult is the success payload of the prune command.
type PruneResult struct {
	Study   string       `json:"study"`
	Retired []SetSummary `json:"retired"`
}

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	var studyName, lineagePath string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "List a study's retired sets for artifact cleanup",
		Long: `List the parameter sets a study's merges have removed. Each line names
a set whose build artifacts are stale; deleting those artifacts is the
caller's decision, this command never touches the filesystem.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(rootOpts, studyName, lineagePath, cmd)
		},
	}

	cmd.Flags().StringVar(&studyName, "study", "", "logical study name (required)")
	cmd.Flags().StringVar(&lineagePath, "lineage", "", "lineage database path (required)")
	cmd.MarkFlagRequired("study")
	cmd.MarkFlagRequired("lineage")

	return cmd
}

func runPrune(rootOpts *RootOptions, studyName, lineagePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	store, err := lineage.Open(lineagePath)
	if err != nil {
		return reportFailure(formatter, err)
	}
	defer store.Close()

	retired, err := store.ListRetired(cmd.Context(), studyName)
	if err != nil {
		return reportFailure(formatter, err)
	}

	result := PruneResult{Study: studyName, Retired: summarize(retired)}
	if rootOpts.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Retired) == 0 {
		fmt.Fprintf(formatter.Writer, "study %s: no retired sets\n", studyName)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "study %s: %d retired sets\n", studyName, len(result.Retired))
	for _, set := range result.Retired {
		fmt.Fprintf(formatter.Writer, "  %-16s %s\n", set.Name, set.Hash)
	}
	return nil
}
