package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the site configuration consumed at build time.
//
// It is constructed once per invocation by Load and treated as read-only
// afterwards.
type Config struct {
	// Identity
	Title   string `yaml:"title"`
	Tagline string `yaml:"tagline,omitempty"`
	Favicon string `yaml:"favicon,omitempty"`

	// Deployment
	URL              string `yaml:"url"`
	BaseURL          string `yaml:"base_url"`
	OrganizationName string `yaml:"organization_name,omitempty"`
	ProjectName      string `yaml:"project_name,omitempty"`
	TrailingSlash    *bool  `yaml:"trailing_slash,omitempty"`

	// Link-integrity policy
	OnBrokenLinks         ReportingSeverity `yaml:"on_broken_links"`
	OnBrokenMarkdownLinks ReportingSeverity `yaml:"on_broken_markdown_links"`
	OnDuplicateRoutes     ReportingSeverity `yaml:"on_duplicate_routes,omitempty"`

	I18n              I18nConfig     `yaml:"i18n"`
	Presets           []PresetConfig `yaml:"presets"`
	ThemeConfig       ThemeConfig    `yaml:"theme_config"`
	StaticDirectories []string       `yaml:"static_directories,omitempty"`
}

// I18nConfig controls which locale variants of the site are produced.
type I18nConfig struct {
	DefaultLocale string                  `yaml:"default_locale"`
	Locales       []string                `yaml:"locales"`
	LocaleConfigs map[string]LocaleConfig `yaml:"locale_configs,omitempty"`
}

// LocaleConfig holds per-locale presentation overrides.
type LocaleConfig struct {
	Label     string `yaml:"label,omitempty"`
	Direction string `yaml:"direction,omitempty"` // ltr|rtl
	HTMLLang  string `yaml:"html_lang,omitempty"`
}

// PresetConfig selects a named preset and its plugin options.
// Only the "classic" preset (docs + blog + pages + theme) is supported.
type PresetConfig struct {
	Name  string        `yaml:"name"`
	Docs  *DocsOptions  `yaml:"docs,omitempty"`
	Blog  *BlogOptions  `yaml:"blog,omitempty"`
	Pages *PagesOptions `yaml:"pages,omitempty"`
	Theme *ThemeOptions `yaml:"theme,omitempty"`
}

// DocsOptions configures the documentation plugin.
type DocsOptions struct {
	Disabled           bool   `yaml:"disabled,omitempty"`
	Path               string `yaml:"path,omitempty"`
	RouteBasePath      string `yaml:"route_base_path,omitempty"`
	SidebarPath        string `yaml:"sidebar_path,omitempty"`
	EditURL            string `yaml:"edit_url,omitempty"`
	EditLocalizedFiles bool   `yaml:"edit_localized_files,omitempty"`
	ShowLastUpdateTime bool   `yaml:"show_last_update_time,omitempty"`
}

// BlogOptions configures the blog plugin.
type BlogOptions struct {
	Disabled           bool   `yaml:"disabled,omitempty"`
	Path               string `yaml:"path,omitempty"`
	RouteBasePath      string `yaml:"route_base_path,omitempty"`
	ShowReadingTime    bool   `yaml:"show_reading_time,omitempty"`
	EditURL            string `yaml:"edit_url,omitempty"`
	EditLocalizedFiles bool   `yaml:"edit_localized_files,omitempty"`
	BlogTitle          string `yaml:"blog_title,omitempty"`
	PostsPerPage       int    `yaml:"posts_per_page,omitempty"`
}

// PagesOptions configures standalone pages.
type PagesOptions struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	Path     string `yaml:"path,omitempty"`
}

// ThemeOptions configures the classic theme plugin.
type ThemeOptions struct {
	CustomCSS StringList `yaml:"custom_css,omitempty"`
}

// ThemeConfig describes navbar, footer and syntax highlighting.
type ThemeConfig struct {
	Navbar    NavbarConfig    `yaml:"navbar"`
	Footer    FooterConfig    `yaml:"footer"`
	Prism     PrismConfig     `yaml:"prism"`
	ColorMode ColorModeConfig `yaml:"color_mode,omitempty"`
}

// LogoConfig references a logo image under a static directory.
type LogoConfig struct {
	Alt     string `yaml:"alt,omitempty"`
	Src     string `yaml:"src"`
	SrcDark string `yaml:"src_dark,omitempty"`
	Href    string `yaml:"href,omitempty"`
}

// NavbarConfig describes the navigation bar.
type NavbarConfig struct {
	Title        string       `yaml:"title,omitempty"`
	Logo         *LogoConfig  `yaml:"logo,omitempty"`
	HideOnScroll bool         `yaml:"hide_on_scroll,omitempty"`
	Items        []NavbarItem `yaml:"items,omitempty"`
}

// NavbarItem is a single navbar entry. Items keep their declared order.
type NavbarItem struct {
	Type      NavbarItemType `yaml:"type,omitempty"`
	Label     string         `yaml:"label,omitempty"`
	Position  NavbarPosition `yaml:"position,omitempty"`
	To        string         `yaml:"to,omitempty"`
	Href      string         `yaml:"href,omitempty"`
	SidebarID string         `yaml:"sidebar_id,omitempty"`
	DocID     string         `yaml:"doc_id,omitempty"`
	Value     string         `yaml:"value,omitempty"`
	Items     []NavbarItem   `yaml:"items,omitempty"`
}

// FooterConfig describes the site footer.
type FooterConfig struct {
	Style     FooterStyle        `yaml:"style"`
	Logo      *LogoConfig        `yaml:"logo,omitempty"`
	Links     []FooterLinkColumn `yaml:"links"`
	Copyright string             `yaml:"copyright,omitempty"`
}

// FooterLinkColumn groups footer links under a title.
type FooterLinkColumn struct {
	Title string       `yaml:"title,omitempty"`
	Items []FooterLink `yaml:"items"`
}

// FooterLink is a single footer entry.
type FooterLink struct {
	Label string `yaml:"label"`
	To    string `yaml:"to,omitempty"`
	Href  string `yaml:"href,omitempty"`
}

// PrismConfig selects syntax-highlighting themes for light and dark modes.
type PrismConfig struct {
	Theme               PrismTheme `yaml:"theme"`
	DarkTheme           PrismTheme `yaml:"dark_theme"`
	AdditionalLanguages []string   `yaml:"additional_languages,omitempty"`
}

// ColorModeConfig controls the light/dark switch.
type ColorModeConfig struct {
	DefaultMode               ColorMode `yaml:"default_mode,omitempty"`
	DisableSwitch             bool      `yaml:"disable_switch,omitempty"`
	RespectPrefersColorScheme bool      `yaml:"respect_prefers_color_scheme,omitempty"`
}

// StringList accepts either a scalar or a sequence of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		if v == "" {
			*s = nil
			return nil
		}
		*s = StringList{v}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = v
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

// Classic returns the classic preset, or nil when none is configured.
func (c *Config) Classic() *PresetConfig {
	for i := range c.Presets {
		if c.Presets[i].Name == PresetClassic {
			return &c.Presets[i]
		}
	}
	return nil
}

// Docs returns the enabled docs options, or nil when docs are disabled.
func (c *Config) Docs() *DocsOptions {
	p := c.Classic()
	if p == nil || p.Docs == nil || p.Docs.Disabled {
		return nil
	}
	return p.Docs
}

// Blog returns the enabled blog options, or nil when the blog is disabled.
func (c *Config) Blog() *BlogOptions {
	p := c.Classic()
	if p == nil || p.Blog == nil || p.Blog.Disabled {
		return nil
	}
	return p.Blog
}

// Pages returns the enabled pages options, or nil when pages are disabled.
func (c *Config) Pages() *PagesOptions {
	p := c.Classic()
	if p == nil || p.Pages == nil || p.Pages.Disabled {
		return nil
	}
	return p.Pages
}

// CustomCSS returns the stylesheet references of the classic theme.
func (c *Config) CustomCSS() []string {
	p := c.Classic()
	if p == nil || p.Theme == nil {
		return nil
	}
	return p.Theme.CustomCSS
}

// NonDefaultLocales returns the configured locales other than the default, in declared order.
func (c *Config) NonDefaultLocales() []string {
	out := make([]string, 0, len(c.I18n.Locales))
	for _, l := range c.I18n.Locales {
		if l != c.I18n.DefaultLocale {
			out = append(out, l)
		}
	}
	return out
}
