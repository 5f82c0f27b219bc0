package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// compositeDefaultApplier runs domain appliers in order.
type compositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier chain used by Load.
func NewDefaultApplier() DefaultApplier {
	return &compositeDefaultApplier{appliers: []DefaultApplier{
		&SiteDefaultApplier{},
		&I18nDefaultApplier{},
		&PresetDefaultApplier{},
		&ThemeDefaultApplier{},
	}}
}

func (c *compositeDefaultApplier) Domain() string { return "all" }

func (c *compositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

func applyDefaults(cfg *Config) error {
	return NewDefaultApplier().ApplyDefaults(cfg)
}

// SiteDefaultApplier handles deployment and link-policy defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "/"
	}
	if cfg.OnBrokenLinks == "" {
		cfg.OnBrokenLinks = SeverityThrow
	}
	if cfg.OnBrokenMarkdownLinks == "" {
		cfg.OnBrokenMarkdownLinks = SeverityWarn
	}
	if cfg.OnDuplicateRoutes == "" {
		cfg.OnDuplicateRoutes = SeverityWarn
	}
	if len(cfg.StaticDirectories) == 0 {
		cfg.StaticDirectories = []string{"static"}
	}
	return nil
}

// I18nDefaultApplier handles locale defaults.
type I18nDefaultApplier struct{}

func (i *I18nDefaultApplier) Domain() string { return "i18n" }

func (i *I18nDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.I18n.DefaultLocale == "" {
		cfg.I18n.DefaultLocale = "en"
	}
	// An omitted locale list means a single-locale site.
	if len(cfg.I18n.Locales) == 0 {
		cfg.I18n.Locales = []string{cfg.I18n.DefaultLocale}
	}
	return nil
}

// PresetDefaultApplier fills in classic preset plugin defaults.
type PresetDefaultApplier struct{}

func (p *PresetDefaultApplier) Domain() string { return "presets" }

func (p *PresetDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Presets) == 0 {
		cfg.Presets = []PresetConfig{{Name: PresetClassic}}
	}
	preset := cfg.Classic()
	if preset == nil {
		return nil // validation reports the unsupported preset
	}
	if preset.Docs == nil {
		preset.Docs = &DocsOptions{}
	}
	if preset.Docs.Path == "" {
		preset.Docs.Path = "docs"
	}
	if preset.Docs.RouteBasePath == "" {
		preset.Docs.RouteBasePath = "docs"
	}
	if preset.Blog == nil {
		preset.Blog = &BlogOptions{}
	}
	if preset.Blog.Path == "" {
		preset.Blog.Path = "blog"
	}
	if preset.Blog.RouteBasePath == "" {
		preset.Blog.RouteBasePath = "blog"
	}
	if preset.Blog.BlogTitle == "" {
		preset.Blog.BlogTitle = "Blog"
	}
	if preset.Blog.PostsPerPage <= 0 {
		preset.Blog.PostsPerPage = 10
	}
	if preset.Pages == nil {
		preset.Pages = &PagesOptions{}
	}
	if preset.Pages.Path == "" {
		preset.Pages.Path = "src/pages"
	}
	return nil
}

// ThemeDefaultApplier handles navbar, footer, prism and color mode defaults.
type ThemeDefaultApplier struct{}

func (t *ThemeDefaultApplier) Domain() string { return "theme" }

func (t *ThemeDefaultApplier) ApplyDefaults(cfg *Config) error {
	tc := &cfg.ThemeConfig
	if tc.Navbar.Title == "" {
		tc.Navbar.Title = cfg.Title
	}
	defaultNavbarItems(tc.Navbar.Items)
	if tc.Footer.Style == "" {
		tc.Footer.Style = FooterLight
	}
	if tc.Prism.Theme == "" {
		tc.Prism.Theme = PrismGithub
	}
	if tc.Prism.DarkTheme == "" {
		tc.Prism.DarkTheme = PrismDracula
	}
	if tc.ColorMode.DefaultMode == "" {
		tc.ColorMode.DefaultMode = ColorModeLight
	}
	return nil
}

func defaultNavbarItems(items []NavbarItem) {
	for i := range items {
		if items[i].Type == "" {
			if len(items[i].Items) > 0 {
				items[i].Type = NavbarDropdown
			} else {
				items[i].Type = NavbarDefault
			}
		}
		if items[i].Position == "" {
			items[i].Position = PositionLeft
		}
		defaultNavbarItems(items[i].Items)
	}
}
