package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/caserun/internal/http"
	"github.com/wesleyorama2/caserun/internal/output"
	"github.com/wesleyorama2/caserun/internal/runner"
	"github.com/wesleyorama2/caserun/internal/testdata"
)

// errCasesFailed is returned when at least one case failed or errored
var errCasesFailed = errors.New("test run failed")

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test cases of a data file",
		Args:  cobra.NoArgs,
		RunE:  runCases,
	}

	runCmd.Flags().StringP("data", "d", "", "Test data file (.csv, .tsv, .xlsx, .yaml, .yml, .json)")
	runCmd.Flags().String("encoding", "utf-8", "Text encoding of the data file")
	runCmd.Flags().String("token", "", "Bearer token sent with every request")
	runCmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout for interfaces that set none")
	runCmd.Flags().Float64("rate", 0, "Maximum cases per second (0 = unlimited)")
	runCmd.Flags().StringSlice("case", nil, "Only run the cases with these IDs")
	runCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")

	return runCmd
}

func runCases(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if s.settings.Data == "" {
		return errors.New("a test data file is required (--data)")
	}

	cases, err := testdata.Read(s.settings.Data, s.settings.Encoding)
	if err != nil {
		return err
	}
	ids, _ := cmd.Flags().GetStringSlice("case")
	cases = testdata.Filter(cases, ids...)

	verbose, _ := cmd.Flags().GetBool("verbose")
	formatter := output.NewFormatter(verbose, s.noColor)
	out := cmd.OutOrStdout()

	r := runner.New(
		http.NewClient(http.WithTimeout(0)),
		s.interfaces,
		runner.WithLogger(s.logger),
		runner.WithDefaultTimeout(s.settings.Timeout),
		runner.WithEnv(s.settings.Env),
		runner.WithToken(s.settings.Token),
		runner.WithRate(s.settings.Rate),
		runner.WithObserver(func(res runner.Result) {
			fmt.Fprint(out, formatter.FormatResult(res))
		}),
	)

	fmt.Fprintf(out, "▶ RUNNING %d CASES: %s (env: %s)\n\n", len(cases), s.settings.Data, s.interfaces.CurrentEnv())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := r.Run(ctx, cases)
	fmt.Fprint(out, formatter.FormatSummary(report.Summary))
	if err != nil {
		s.logger.Warn("run interrupted", zap.Error(err))
		return err
	}

	if !report.Summary.OK() {
		return errCasesFailed
	}
	return nil
}
