package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/caserun/internal/config"
)

func newInterfacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces [MODULE [INTERFACE]]",
		Short: "List configured interfaces or show one resolved definition",
		Args:  cobra.MaximumNArgs(2),
		RunE:  showInterfaces,
	}
}

func showInterfaces(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	out := cmd.OutOrStdout()
	env := s.settings.Env

	switch len(args) {
	case 2:
		def, err := s.interfaces.GetInterfaceInfo(args[0], args[1], env)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# %s.%s (env: %s)\n", def.Module, def.Name, s.interfaces.CurrentEnv())
		encoded, err := yaml.Marshal(def.Raw)
		if err != nil {
			return fmt.Errorf("encode interface: %w", err)
		}
		_, err = out.Write(encoded)
		return err
	case 1:
		ifaces, err := s.interfaces.GetModuleInterfaces(args[0])
		if err != nil {
			return err
		}
		listModule(out, s.interfaces, args[0], ifaces, env)
		return nil
	default:
		all := s.interfaces.GetAllInterfaces()
		if len(all) == 0 {
			fmt.Fprintln(out, "no interfaces configured")
			return nil
		}
		modules := make([]string, 0, len(all))
		for module := range all {
			modules = append(modules, module)
		}
		sort.Strings(modules)
		for _, module := range modules {
			ifaces, ok := all[module].(map[string]any)
			if !ok {
				fmt.Fprintf(out, "%s\n  invalid: module is not a mapping\n", module)
				continue
			}
			listModule(out, s.interfaces, module, ifaces, env)
		}
		return nil
	}
}

// listModule prints the interfaces of module with their resolved method and
// URL.
func listModule(out io.Writer, ic *config.InterfaceConfig, module string, ifaces map[string]any, env string) {
	names := make([]string, 0, len(ifaces))
	for name := range ifaces {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%s\n", module)
	for _, name := range names {
		def, err := ic.GetInterfaceInfo(module, name, env)
		if err != nil {
			fmt.Fprintf(out, "  %-20s invalid: %v\n", name, err)
			continue
		}
		fmt.Fprintf(out, "  %-20s %-7s %s\n", name, strings.ToUpper(def.Method), def.URL)
	}
}
