package cli

import (
	"encoding/json"
	"fmt"
	"net/textproto"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/caserun/internal/http"
	"github.com/wesleyorama2/caserun/internal/output"
)

func newCallCmd() *cobra.Command {
	callCmd := &cobra.Command{
		Use:   "call MODULE INTERFACE",
		Short: "Send one request to a configured interface and print the response",
		Args:  cobra.ExactArgs(2),
		RunE:  callInterface,
	}

	callCmd.Flags().StringP("params", "p", "", "Request parameters as a JSON object")
	callCmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include (can be used multiple times)")
	callCmd.Flags().String("token", "", "Bearer token")
	callCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")

	return callCmd
}

func callInterface(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	def, err := s.interfaces.GetInterfaceInfo(args[0], args[1], s.settings.Env)
	if err != nil {
		return err
	}

	headers := def.Headers
	rawHeaders, _ := cmd.Flags().GetStringArray("header")
	for _, header := range rawHeaders {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			headers[textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(parts[0]))] = strings.TrimSpace(parts[1])
		}
	}

	var params any
	if raw, _ := cmd.Flags().GetString("params"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return fmt.Errorf("invalid --params: %w", err)
		}
	}

	timeout := def.Timeout
	if timeout <= 0 {
		timeout = s.settings.Timeout
	}
	client := http.NewClient(http.WithTimeout(timeout))
	ctx := cmd.Context()

	resp, _, err := client.Call(ctx, def.Method, def.URL, params, headers, s.settings.Token)

	verbose, _ := cmd.Flags().GetBool("verbose")
	formatter := output.NewFormatter(verbose, s.noColor)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "▶ REQUEST: %s %s\n", def.Method, def.URL)
	if resp != nil {
		fmt.Fprint(out, formatter.FormatResponse(resp))
	}

	if err != nil {
		return fmt.Errorf("%s.%s: %w", def.Module, def.Name, err)
	}
	return nil
}
