package config

import (
	"errors"
	"fmt"
	"net/textproto"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// PlaceholderBaseURL is the literal base address interface URLs are
	// written against. It is swapped for the active environment's api_base_url.
	PlaceholderBaseURL = "http://localhost:8080"

	// DefaultEnv is used when no current environment is configured
	DefaultEnv = "dev"

	// DefaultTimeoutSeconds applies when neither the entry nor global sets one
	DefaultTimeoutSeconds = 30
)

// InterfaceDefinition is the effective configuration of one interface after
// global defaults and the active environment have been applied.
type InterfaceDefinition struct {
	Module   string
	Name     string
	URL      string
	Method   string
	Headers  map[string]string
	Timeout  time.Duration
	Expected any

	// Raw is the resolved entry with every field, including unknown ones
	Raw map[string]any
}

// InterfaceConfig merges environment, interface and generic config files and
// resolves single interfaces against the active environment. It is loaded
// once per session and read-only afterwards.
type InterfaceConfig struct {
	interfaceConfig map[string]any
	envConfig       map[string]any
	currentEnv      string
	logger          *zap.Logger
}

// Option configures an InterfaceConfig
type Option func(*InterfaceConfig)

// WithLogger sets the logger used for load diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(c *InterfaceConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCurrentEnv pins the current environment, taking precedence over any
// current_env value found in the loaded files.
func WithCurrentEnv(env string) Option {
	return func(c *InterfaceConfig) {
		c.currentEnv = env
	}
}

// NewInterfaceConfig creates an empty resolver
func NewInterfaceConfig(options ...Option) *InterfaceConfig {
	c := &InterfaceConfig{
		interfaceConfig: make(map[string]any),
		envConfig:       make(map[string]any),
		logger:          zap.NewNop(),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// LoadAll loads the given files in order. Later files win on conflicting
// keys. Missing files are logged and skipped; any other error aborts.
func (c *InterfaceConfig) LoadAll(paths ...string) error {
	for _, path := range paths {
		err := c.Load(path)

		var notFound *NotFoundError
		if errors.As(err, &notFound) && notFound.Kind == "file" {
			c.logger.Warn("config file not found, skipping", zap.String("path", path))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Load loads one file and merges it into the resolver state.
func (c *InterfaceConfig) Load(path string) error {
	raw, err := LoadFile(path)
	if err != nil {
		return err
	}

	if err := checkShape(path, raw); err != nil {
		return err
	}

	c.apply(raw)
	c.logger.Debug("loaded config file",
		zap.String("path", path),
		zap.Bool("env", raw["env"] != nil),
		zap.Bool("interfaces", raw["interfaces"] != nil))
	return nil
}

// checkShape rejects env and interfaces sections that are not mappings
// before anything is merged, so a bad file never half-applies.
func checkShape(path string, raw RawConfig) error {
	if value, ok := raw["env"]; ok {
		if _, isMap := value.(map[string]any); !isMap {
			return &ParseError{Path: path, Format: "config", Err: fmt.Errorf("env must be a mapping, got %T", value)}
		}
	}

	if value, ok := raw["interfaces"]; ok {
		modules, isMap := value.(map[string]any)
		if !isMap {
			return &ParseError{Path: path, Format: "config", Err: fmt.Errorf("interfaces must be a mapping, got %T", value)}
		}
		for module, ifaces := range modules {
			if _, isMap := ifaces.(map[string]any); !isMap {
				return &ParseError{Path: path, Format: "config", Err: fmt.Errorf("interfaces.%s must be a mapping, got %T", module, ifaces)}
			}
		}
	}

	return nil
}

func (c *InterfaceConfig) apply(raw RawConfig) {
	for key, value := range raw {
		switch key {
		case "env":
			// Environments are replaced per name, never deep-merged
			for name, settings := range value.(map[string]any) {
				c.envConfig[name] = copyValue(settings)
			}
		case "interfaces":
			c.applyInterfaces(value.(map[string]any))
		default:
			Merge(c.interfaceConfig, map[string]any{key: value})
		}
	}
}

// applyInterfaces replaces entries at module.interface granularity: a later
// entry for the same interface wins as a whole, fields are not merged.
func (c *InterfaceConfig) applyInterfaces(modules map[string]any) {
	all, ok := c.interfaceConfig["interfaces"].(map[string]any)
	if !ok {
		all = make(map[string]any)
		c.interfaceConfig["interfaces"] = all
	}

	for module, ifaces := range modules {
		dst, ok := all[module].(map[string]any)
		if !ok {
			dst = make(map[string]any)
			all[module] = dst
		}
		for name, entry := range ifaces.(map[string]any) {
			dst[name] = copyValue(entry)
		}
	}
}

// GetInterfaceInfo resolves the effective definition of module.iface. An
// empty env means the current environment.
func (c *InterfaceConfig) GetInterfaceInfo(module, iface, env string) (*InterfaceDefinition, error) {
	qualified := module + "." + iface

	modules, _ := c.interfaceConfig["interfaces"].(map[string]any)
	ifaces, ok := modules[module].(map[string]any)
	if !ok {
		return nil, &NotFoundError{Kind: "interface", Name: qualified}
	}
	entry, ok := ifaces[iface].(map[string]any)
	if !ok {
		return nil, &NotFoundError{Kind: "interface", Name: qualified}
	}

	info := copyMap(entry)
	global := c.globalSection()

	// Header names are compared in canonical form, so x-tenant and X-Tenant
	// are one header
	headers := make(map[string]any)
	switch h := info["headers"].(type) {
	case nil:
	case map[string]any:
		for key, value := range h {
			headers[textproto.CanonicalMIMEHeaderKey(key)] = value
		}
	default:
		return nil, ValidationError{
			Path:    fmt.Sprintf("interfaces.%s.headers", qualified),
			Message: fmt.Sprintf("headers must be a mapping, got %T", h),
		}
	}

	// Global headers only fill gaps
	if defaults, ok := global["default_headers"].(map[string]any); ok {
		for key, value := range defaults {
			key = textproto.CanonicalMIMEHeaderKey(key)
			if _, exists := headers[key]; !exists {
				headers[key] = copyValue(value)
			}
		}
	}
	info["headers"] = headers

	if info["timeout"] == nil {
		if timeout, ok := global["default_timeout"]; ok && timeout != nil {
			info["timeout"] = timeout
		} else {
			info["timeout"] = DefaultTimeoutSeconds
		}
	}

	if url, ok := info["url"].(string); ok {
		info["url"] = c.ResolveURL(url, env)
	}

	return newInterfaceDefinition(module, iface, info)
}

func newInterfaceDefinition(module, iface string, info map[string]any) (*InterfaceDefinition, error) {
	timeout, err := toTimeout(info["timeout"])
	if err != nil {
		return nil, ValidationError{
			Path:    fmt.Sprintf("interfaces.%s.%s.timeout", module, iface),
			Message: err.Error(),
		}
	}

	def := &InterfaceDefinition{
		Module:   module,
		Name:     iface,
		Method:   strings.ToUpper(stringValue(info["method"])),
		URL:      stringValue(info["url"]),
		Headers:  make(map[string]string),
		Timeout:  timeout,
		Expected: info["expected_result"],
		Raw:      info,
	}

	for key, value := range info["headers"].(map[string]any) {
		def.Headers[key] = stringValue(value)
	}

	return def, nil
}

// toTimeout reads a timeout value. Plain numbers are seconds; strings may be
// numeric or a duration such as "5s" or "2 minutes".
func toTimeout(v any) (time.Duration, error) {
	switch val := v.(type) {
	case int:
		return time.Duration(val) * time.Second, nil
	case int64:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		if seconds, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return time.Duration(seconds * float64(time.Second)), nil
		}
		d, err := parseDurationString(val)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout %q: %w", val, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("invalid timeout type %T", v)
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// ResolveURL swaps the literal PlaceholderBaseURL prefix for the base URL of
// env. Other URLs are returned unchanged.
func (c *InterfaceConfig) ResolveURL(url, env string) string {
	if !strings.HasPrefix(url, PlaceholderBaseURL) {
		return url
	}

	rest := strings.TrimPrefix(url, PlaceholderBaseURL)
	base := c.BaseURL(env)
	if strings.HasPrefix(rest, "/") {
		base = strings.TrimRight(base, "/")
	}
	return base + rest
}

// BaseURL returns api_base_url of env (current env when empty), falling back
// to PlaceholderBaseURL.
func (c *InterfaceConfig) BaseURL(env string) string {
	if env == "" {
		env = c.CurrentEnv()
	}

	settings, _ := c.envConfig[env].(map[string]any)
	if base, ok := settings["api_base_url"].(string); ok && base != "" {
		return base
	}
	return PlaceholderBaseURL
}

// CurrentEnv returns the active environment name
func (c *InterfaceConfig) CurrentEnv() string {
	if c.currentEnv != "" {
		return c.currentEnv
	}
	if env, ok := c.interfaceConfig["current_env"].(string); ok && env != "" {
		return env
	}
	if env, ok := c.globalSection()["current_env"].(string); ok && env != "" {
		return env
	}
	return DefaultEnv
}

// GetModuleInterfaces returns a copy of every interface entry of module
func (c *InterfaceConfig) GetModuleInterfaces(module string) (map[string]any, error) {
	modules, _ := c.interfaceConfig["interfaces"].(map[string]any)
	ifaces, ok := modules[module].(map[string]any)
	if !ok {
		return nil, &NotFoundError{Kind: "module", Name: module}
	}
	return copyMap(ifaces), nil
}

// GetAllInterfaces returns a copy of the whole interfaces tree
func (c *InterfaceConfig) GetAllInterfaces() map[string]any {
	modules, _ := c.interfaceConfig["interfaces"].(map[string]any)
	if modules == nil {
		return map[string]any{}
	}
	return copyMap(modules)
}

// GetGlobalConfig returns a copy of the global section
func (c *InterfaceConfig) GetGlobalConfig() map[string]any {
	return copyMap(c.globalSection())
}

// EnvSettings returns a copy of the settings of one environment
func (c *InterfaceConfig) EnvSettings(env string) (map[string]any, error) {
	settings, ok := c.envConfig[env].(map[string]any)
	if !ok {
		return nil, &NotFoundError{Kind: "environment", Name: env}
	}
	return copyMap(settings), nil
}

// Lookup returns a value of the generic config by dotted path, e.g.
// "database.host" for an INI section key.
func (c *InterfaceConfig) Lookup(path string) (any, bool) {
	var current any = c.interfaceConfig
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return copyValue(current), true
}

// Modules returns the sorted module names
func (c *InterfaceConfig) Modules() []string {
	modules, _ := c.interfaceConfig["interfaces"].(map[string]any)
	return sortedKeys(modules)
}

// Environments returns the sorted environment names
func (c *InterfaceConfig) Environments() []string {
	return sortedKeys(c.envConfig)
}

func (c *InterfaceConfig) globalSection() map[string]any {
	global, _ := c.interfaceConfig["global"].(map[string]any)
	return global
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
