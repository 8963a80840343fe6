package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/caserun/internal/config"
	"github.com/wesleyorama2/caserun/internal/logging"
	"github.com/wesleyorama2/caserun/internal/output"
)

// settingFlags maps flag names to settings keys
var settingFlags = map[string]string{
	"config":     "config_files",
	"env":        "env",
	"data":       "data",
	"encoding":   "encoding",
	"token":      "token",
	"timeout":    "timeout",
	"rate":       "rate",
	"log-level":  "log_level",
	"log-format": "log_format",
	"no-color":   "no_color",
}

// session is the state shared by the commands of one invocation
type session struct {
	settings   config.Settings
	logger     *zap.Logger
	noColor    bool
	interfaces *config.InterfaceConfig
}

// newSession resolves settings, builds the logger and loads the configured
// interface files.
func newSession(cmd *cobra.Command) (*session, error) {
	settingsFile, _ := cmd.Flags().GetString("settings")

	settings, err := config.LoadSettings(settingsFile, flagOverrides(cmd))
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return nil, err
	}

	s := &session{
		settings: settings,
		logger:   logger,
		noColor:  settings.NoColor || !isTerminal(cmd),
	}
	if s.noColor {
		color.NoColor = true
	}

	s.interfaces = config.NewInterfaceConfig(
		config.WithLogger(logger),
		config.WithCurrentEnv(settings.Env),
	)
	if err := s.interfaces.LoadAll(settings.ConfigFiles...); err != nil {
		return nil, err
	}

	logger.Debug("session ready",
		zap.String("env", s.interfaces.CurrentEnv()),
		zap.Strings("config_files", settings.ConfigFiles))
	return s, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

// flagOverrides collects the flags set on the command line, keyed by
// settings key.
func flagOverrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	for name, key := range settingFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}

		switch f.Value.Type() {
		case "stringArray":
			overrides[key], _ = cmd.Flags().GetStringArray(name)
		case "duration":
			overrides[key], _ = cmd.Flags().GetDuration(name)
		case "float64":
			overrides[key], _ = cmd.Flags().GetFloat64(name)
		case "bool":
			overrides[key], _ = cmd.Flags().GetBool(name)
		default:
			overrides[key] = f.Value.String()
		}
	}
	return overrides
}

// isTerminal reports whether the command writes to a terminal
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && output.IsTerminal(f)
}
