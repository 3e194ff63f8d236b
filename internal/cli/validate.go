package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studygen/internal/schema"
)

// ValidationResult is the success payload of the validate command.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Parameters int    `json:"parameters"`
	Varying    int    `json:"varying"`
	SchemaHash string `json:"schema_hash"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema.yaml>",
		Short: "Validate a parameter schema without generating",
		Long: `Validate a YAML parameter schema: shape, parameter-level constraints,
and value representability. Prints the schema fingerprint on success.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := schema.Load(path)
	if err != nil {
		return reportFailure(formatter, err)
	}

	hash, err := s.Hash()
	if err != nil {
		return reportFailure(formatter, err)
	}

	result := ValidationResult{
		Valid:      true,
		Parameters: s.Len(),
		Varying:    len(s.Varying()),
		SchemaHash: hash,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Schema valid: %d parameters (%d varying)\n", result.Parameters, result.Varying)
	fmt.Fprintf(formatter.Writer, "schema_hash: %s\n", result.SchemaHash)
	return nil
}
