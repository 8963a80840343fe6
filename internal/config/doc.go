// Package config loads and merges the layered configuration of the harness.
//
// Config files are YAML or INI. Each loaded file is classified by its
// top-level keys:
//   - env: environment settings, replaced per environment name
//   - interfaces: interface definitions, replaced per module.interface
//   - anything else (global, current_env, INI sections): deep-merged
//
// Basic Usage:
//
//	ic := config.NewInterfaceConfig(config.WithLogger(logger))
//	if err := ic.LoadAll("conf/env.yaml", "conf/interface_info.yaml"); err != nil {
//	    return err
//	}
//
//	def, err := ic.GetInterfaceInfo("user", "login", "")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(def.Method, def.URL, def.Timeout)
//
// URLs written against PlaceholderBaseURL are rewritten to the api_base_url
// of the active environment.
package config
