package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/upmkit/upmkit/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "upmkit.json"

	// DefaultManifest is the default manifest location, relative to the
	// project root.
	DefaultManifest = "Packages/manifest.json"

	// DefaultRegistryName is the default scoped registry name.
	DefaultRegistryName = "Magic Leap"

	// DefaultRegistryURL is the default scoped registry endpoint.
	DefaultRegistryURL = "https://registry.npmjs.org"

	// DefaultScope is the default registry scope prefix.
	DefaultScope = "com.magicleap"

	// DefaultPackage is the SDK package the setup flow installs.
	DefaultPackage = "com.magicleap.unitysdk"

	// DefaultInstallTimeout bounds how long an add request may take.
	DefaultInstallTimeout = 60 * time.Second

	// DefaultServePort is the default local registry server port.
	DefaultServePort = 4873

	// DefaultServeHost is the default local registry server host.
	DefaultServeHost = "localhost"
)

// Config represents the complete upmkit.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Manifest is the path to the package manifest, relative to the
	// project root unless absolute.
	Manifest string `json:"manifest,omitempty"`

	// Registry is the scoped registry the setup flow ensures.
	Registry RegistryConfig `json:"registry,omitempty"`

	// Install contains package install settings.
	Install InstallConfig `json:"install,omitempty"`

	// Serve contains local registry server settings.
	Serve ServeConfig `json:"serve,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RegistryConfig describes a scoped registry entry.
type RegistryConfig struct {
	// Name identifies the registry inside the manifest.
	Name string `json:"name,omitempty"`

	// URL is the registry endpoint address.
	URL string `json:"url,omitempty"`

	// Scopes are the package-identifier prefixes the registry serves.
	Scopes []string `json:"scopes,omitempty"`
}

// InstallConfig contains package install settings.
type InstallConfig struct {
	// Package is the identifier the setup flow installs.
	Package string `json:"package,omitempty"`

	// Timeout is the add-request timeout (e.g., "60s").
	Timeout string `json:"timeout,omitempty"`

	// Cache is the directory packages are staged into.
	Cache string `json:"cache,omitempty"`

	// RefreshStamp is a file whose mtime is bumped after a manifest
	// write, for editors that watch it. Empty disables the stamp.
	RefreshStamp string `json:"refreshStamp,omitempty"`
}

// ServeConfig contains local registry server settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Dir is the directory containing published packages.
	Dir string `json:"dir,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Manifest: DefaultManifest,
		Registry: RegistryConfig{
			Name:   DefaultRegistryName,
			URL:    DefaultRegistryURL,
			Scopes: []string{DefaultScope},
		},
		Install: InstallConfig{
			Package: DefaultPackage,
			Timeout: DefaultInstallTimeout.String(),
			Cache:   ".upmkit/packages",
		},
		Serve: ServeConfig{
			Host: DefaultServeHost,
			Port: DefaultServePort,
			Dir:  "registry",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for upmkit.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No upmkit.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'upmkit init' to create a project or create upmkit.json manually")
		}
		return nil, errors.New("E120").WithPath(path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithPath(path).
			WithDetail("Failed to parse upmkit.json: " + err.Error()).
			WithSuggestion("Check that upmkit.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").WithPath(path).Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").WithPath(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}

	if c.Registry.Name == "" {
		c.Registry.Name = DefaultRegistryName
	}
	if c.Registry.URL == "" {
		c.Registry.URL = DefaultRegistryURL
	}
	if len(c.Registry.Scopes) == 0 {
		c.Registry.Scopes = []string{DefaultScope}
	}

	if c.Install.Package == "" {
		c.Install.Package = DefaultPackage
	}
	if c.Install.Timeout == "" {
		c.Install.Timeout = DefaultInstallTimeout.String()
	}
	if c.Install.Cache == "" {
		c.Install.Cache = ".upmkit/packages"
	}

	if c.Serve.Host == "" {
		c.Serve.Host = DefaultServeHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultServePort
	}
	if c.Serve.Dir == "" {
		c.Serve.Dir = "registry"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("E121").
			WithDetail("Port must be between 0 and 65535")
	}
	if _, err := time.ParseDuration(c.Install.Timeout); err != nil {
		return errors.New("E121").
			WithDetail("Install timeout must be a duration like \"60s\"")
	}
	return nil
}

// ManifestPath returns the absolute path to the package manifest.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	return filepath.Join(c.Dir(), c.Manifest)
}

// CachePath returns the absolute path to the package cache directory.
func (c *Config) CachePath() string {
	if filepath.IsAbs(c.Install.Cache) {
		return c.Install.Cache
	}
	return filepath.Join(c.Dir(), c.Install.Cache)
}

// ServeDirPath returns the absolute path to the served registry directory.
func (c *Config) ServeDirPath() string {
	if filepath.IsAbs(c.Serve.Dir) {
		return c.Serve.Dir
	}
	return filepath.Join(c.Dir(), c.Serve.Dir)
}

// ServeAddress returns the listen address for the local registry server.
func (c *Config) ServeAddress() string {
	return c.Serve.Host + ":" + itoa(c.Serve.Port)
}

// InstallTimeout returns the parsed add-request timeout.
func (c *Config) InstallTimeout() time.Duration {
	d, err := time.ParseDuration(c.Install.Timeout)
	if err != nil || d <= 0 {
		return DefaultInstallTimeout
	}
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing upmkit.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No upmkit.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'upmkit init' to create a project")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	// Reverse
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
