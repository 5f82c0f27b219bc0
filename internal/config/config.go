package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file name looked up by the CLI.
const DefaultConfigFile = "siteconf.yaml"

// Load reads, normalizes, defaults and validates the configuration at configPath.
//
// A .env or .env.local file next to the configuration is loaded first so that
// ${VAR} references in the YAML can be expanded.
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Read is Load without the validation pass.
func Read(configPath string) (*Config, error) {
	if err := loadEnvFile(filepath.Dir(configPath)); err != nil && !errors.Is(err, errNoEnvFile) {
		slog.Debug("Environment file not loaded", "error", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").
				Fatal().
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes raw YAML (after environment expansion) and runs the
// normalize, defaults and validation passes.
func Parse(data []byte) (*Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode expands the environment, decodes data and applies normalization
// and defaults. The result is not validated.
func Decode(data []byte) (*Config, error) {
	expanded := expandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ferrors.ConfigError("configuration file is empty").Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").Fatal().Build()
	}

	// Normalization pass (case-fold enumerations, trim whitespace)
	nres, err := NormalizeConfig(&cfg)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "normalize").Fatal().Build()
	}
	for _, w := range nres.Warnings {
		slog.Warn("Config normalization", "detail", w)
	}

	// Defaults run after normalization so canonical values drive them.
	if err := applyDefaults(&cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to apply defaults").Fatal().Build()
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(ExampleConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Site configuration. Values like ${VAR} are expanded from the environment.\n")
	if err := os.WriteFile(configPath, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ExampleConfig returns the Devscast Engineering site configuration.
func ExampleConfig() *Config {
	return &Config{
		Title:                 "Devscast Engineering",
		Tagline:               "Devscast Engineering Blog",
		Favicon:               "img/logo.png",
		URL:                   "https://engineering.devscast.tech",
		BaseURL:               "/",
		OrganizationName:      "devscast",
		ProjectName:           "engineering",
		OnBrokenLinks:         SeverityThrow,
		OnBrokenMarkdownLinks: SeverityWarn,
		I18n: I18nConfig{
			DefaultLocale: "en",
			Locales:       []string{"en", "fr"},
		},
		Presets: []PresetConfig{{
			Name: PresetClassic,
			Docs: &DocsOptions{
				SidebarPath: "sidebars.yaml",
				EditURL:     "https://github.com/devscast/engineering.devscast.tech/",
			},
			Blog: &BlogOptions{
				ShowReadingTime: true,
				EditURL:         "https://github.com/devscast/engineering.devscast.tech/",
			},
			Theme: &ThemeOptions{CustomCSS: StringList{"src/css/custom.css"}},
		}},
		ThemeConfig: ThemeConfig{
			Navbar: NavbarConfig{
				Title: "Engineering",
				Logo:  &LogoConfig{Alt: "devscast logo", Src: "img/logo.png"},
				Items: []NavbarItem{
					{Type: NavbarDocSidebar, SidebarID: "tutorialSidebar", Position: PositionLeft, Label: "Guides"},
					{To: "/blog", Label: "Blog", Position: PositionLeft},
					{Href: "https://github.com/devscast", Label: "GitHub", Position: PositionRight},
				},
			},
			Footer: FooterConfig{
				Style:     FooterLight,
				Links:     []FooterLinkColumn{},
				Copyright: "Copyright © {{ .Year }} Devscast Engineering.",
			},
			Prism: PrismConfig{Theme: PrismGithub, DarkTheme: PrismDracula},
		},
	}
}
