package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/caserun/internal/config"
	"github.com/wesleyorama2/caserun/internal/output"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the interface and environment configuration",
		Args:  cobra.NoArgs,
		RunE:  validateConfig,
	}
}

func validateConfig(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	out := cmd.OutOrStdout()
	problems := config.Validate(s.interfaces)
	if len(problems) > 0 {
		fmt.Fprintln(out, "Configuration validation errors:")
		for _, problem := range problems {
			fmt.Fprintf(out, "  %s %s\n", output.ErrorIcon(s.noColor), problem.Error())
		}
		return fmt.Errorf("%d configuration problems found", len(problems))
	}

	fmt.Fprintf(out, "%s Configuration is valid: %d modules, %d environments\n",
		output.SuccessIcon(s.noColor),
		len(s.interfaces.Modules()),
		len(s.interfaces.Environments()))
	return nil
}
