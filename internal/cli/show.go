package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studygen/internal/canon"
	"studygen/internal/lineage"
)

// ShowSet is the per-set payload of the show command, values included.
type ShowSet struct {
	Name    string       `json:"name"`
	Ordinal int          `json:"ordinal"`
	Hash    string       `json:"content_hash"`
	Values  canon.Object `json:"values"`
}

// ShowResult is the success payload of the show command.
type ShowResult struct {
	Study    string    `json:"study"`
	Strategy string    `json:"strategy"`
	Sets     []ShowSet `json:"sets"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var studyName, lineagePath string

	cmd := &cobra.Command{
		Use:           "show",
		Short:         "Show a study's current parameter sets from its lineage",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, studyName, lineagePath, cmd)
		},
	}

	cmd.Flags().StringVar(&studyName, "study", "", "logical study name (required)")
	cmd.Flags().StringVar(&lineagePath, "lineage", "", "lineage database path (required)")
	cmd.MarkFlagRequired("study")
	cmd.MarkFlagRequired("lineage")

	return cmd
}

func runShow(rootOpts *RootOptions, studyName, lineagePath string, cmd *cobra.Command) error {
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

	st, err := store.LoadStudy(cmd.Context(), studyName)
	if err != nil {
		return reportFailure(formatter, err)
	}
	if st == nil {
		return reportFailure(formatter, fmt.Errorf("no lineage recorded for study %q", studyName))
	}

	result := ShowResult{Study: st.Name, Strategy: st.Strategy}
	for _, set := range st.Sets {
		result.Sets = append(result.Sets, ShowSet{
			Name:    set.Name(),
			Ordinal: set.Ordinal,
			Hash:    set.Hash,
			Values:  set.Values,
		})
	}
	if rootOpts.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "study %s (%s): %d sets\n", result.Study, result.Strategy, len(result.Sets))
	for _, set := range result.Sets {
		values, err := set.Values.MarshalJSON()
		if err != nil {
			return reportFailure(formatter, err)
		}
		fmt.Fprintf(formatter.Writer, "  %-16s %s  %s\n", set.Name, set.Hash, values)
	}
	return nil
}
