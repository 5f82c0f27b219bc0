package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	ferrors "github.com/devscast/siteconf/internal/foundation/errors"
)

// FieldError describes one invalid configuration field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

// ValidateConfig checks every rule of the configuration and reports all
// problems at once as a single validation error.
func ValidateConfig(cfg *Config) error {
	cv := newConfigurationValidator(cfg)
	cv.validate()
	if len(cv.problems) == 0 {
		return nil
	}
	return ferrors.WrapError(errors.Join(cv.problems...), ferrors.CategoryValidation, "configuration validation failed").
		Fatal().
		WithContext("problems", len(cv.problems)).
		Build()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config   *Config
	problems []error
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) fail(field, format string, args ...any) {
	cv.problems = append(cv.problems, &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func (cv *configurationValidator) validate() {
	cv.validateIdentity()
	cv.validateDeployment()
	cv.validatePolicies()
	cv.validateI18n()
	cv.validatePresets()
	cv.validateNavbar()
	cv.validateFooter()
	cv.validatePrism()
}

func (cv *configurationValidator) validateIdentity() {
	if cv.config.Title == "" {
		cv.fail("title", "must not be empty")
	}
}

func (cv *configurationValidator) validateDeployment() {
	c := cv.config
	if c.URL == "" {
		cv.fail("url", "must not be empty")
	} else if u, err := url.Parse(c.URL); err != nil {
		cv.fail("url", "invalid URL: %v", err)
	} else {
		switch {
		case u.Scheme != "http" && u.Scheme != "https":
			cv.fail("url", "scheme must be http or https, got %q", u.Scheme)
		case u.Host == "":
			cv.fail("url", "must include a host")
		case u.Path != "" && u.Path != "/":
			cv.fail("url", "must not contain a path (%q); use base_url instead", u.Path)
		case u.RawQuery != "" || u.Fragment != "":
			cv.fail("url", "must not contain a query or fragment")
		}
	}

	switch {
	case !strings.HasPrefix(c.BaseURL, "/"):
		cv.fail("base_url", "must start with '/', got %q", c.BaseURL)
	case strings.Contains(c.BaseURL, "//"):
		cv.fail("base_url", "must not contain empty path segments, got %q", c.BaseURL)
	case strings.ContainsAny(c.BaseURL, "?#"):
		cv.fail("base_url", "must be a plain path, got %q", c.BaseURL)
	}

	if c.Favicon != "" && isExternal(c.Favicon) {
		cv.fail("favicon", "must reference a file under a static directory, got %q", c.Favicon)
	}
}

func (cv *configurationValidator) validatePolicies() {
	c := cv.config
	checkSeverity := func(field string, v ReportingSeverity) {
		if NormalizeReportingSeverity(string(v)) != v {
			cv.fail(field, "unsupported value %q (ignore|log|warn|throw)", v)
		}
	}
	checkSeverity("on_broken_links", c.OnBrokenLinks)
	checkSeverity("on_broken_markdown_links", c.OnBrokenMarkdownLinks)
	checkSeverity("on_duplicate_routes", c.OnDuplicateRoutes)
}

func (cv *configurationValidator) validateI18n() {
	i := cv.config.I18n
	if len(i.Locales) == 0 {
		cv.fail("i18n.locales", "must not be empty")
		return
	}
	seen := make(map[string]bool, len(i.Locales))
	for idx, l := range i.Locales {
		field := fmt.Sprintf("i18n.locales[%d]", idx)
		if l == "" {
			cv.fail(field, "must not be empty")
			continue
		}
		if seen[l] {
			cv.fail(field, "duplicate locale %q", l)
		}
		seen[l] = true
		if _, err := language.Parse(l); err != nil {
			cv.fail(field, "invalid locale tag %q: %v", l, err)
		}
	}
	if !seen[i.DefaultLocale] {
		cv.fail("i18n.default_locale", "locale %q is not listed in i18n.locales %v", i.DefaultLocale, i.Locales)
	}
	for l, lc := range i.LocaleConfigs {
		field := "i18n.locale_configs." + l
		if !seen[l] {
			cv.fail(field, "locale %q is not listed in i18n.locales", l)
		}
		if lc.Direction != "" && lc.Direction != "ltr" && lc.Direction != "rtl" {
			cv.fail(field+".direction", "must be ltr or rtl, got %q", lc.Direction)
		}
	}
}

func (cv *configurationValidator) validatePresets() {
	classic := 0
	for idx, p := range cv.config.Presets {
		field := fmt.Sprintf("presets[%d]", idx)
		if p.Name != PresetClassic {
			cv.fail(field+".name", "unsupported preset %q (only %q is available)", p.Name, PresetClassic)
			continue
		}
		classic++
		if p.Docs != nil {
			cv.checkEditURL(field+".docs.edit_url", p.Docs.EditURL)
			cv.checkRouteBase(field+".docs.route_base_path", p.Docs.RouteBasePath)
			if p.Docs.SidebarPath != "" && isExternal(p.Docs.SidebarPath) {
				cv.fail(field+".docs.sidebar_path", "must be a local file, got %q", p.Docs.SidebarPath)
			}
		}
		if p.Blog != nil {
			cv.checkEditURL(field+".blog.edit_url", p.Blog.EditURL)
			cv.checkRouteBase(field+".blog.route_base_path", p.Blog.RouteBasePath)
		}
		if p.Theme != nil {
			for i, css := range p.Theme.CustomCSS {
				if strings.TrimSpace(css) == "" {
					cv.fail(fmt.Sprintf("%s.theme.custom_css[%d]", field, i), "must not be empty")
				}
			}
		}
	}
	if classic > 1 {
		cv.fail("presets", "classic preset declared %d times", classic)
	}
	if d, b := cv.config.Docs(), cv.config.Blog(); d != nil && b != nil && trimSlashes(d.RouteBasePath) == trimSlashes(b.RouteBasePath) {
		cv.fail("presets", "docs and blog share route base path %q", d.RouteBasePath)
	}
}

func (cv *configurationValidator) checkEditURL(field, raw string) {
	if raw == "" {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		cv.fail(field, "must be an absolute http(s) URL, got %q", raw)
	}
}

func (cv *configurationValidator) checkRouteBase(field, raw string) {
	if strings.Contains(raw, "://") || strings.ContainsAny(raw, "?#") {
		cv.fail(field, "must be a path, got %q", raw)
	}
}

func (cv *configurationValidator) validateNavbar() {
	nb := cv.config.ThemeConfig.Navbar
	if nb.Logo != nil && nb.Logo.Src == "" {
		cv.fail("theme_config.navbar.logo.src", "must not be empty")
	}
	cv.validateNavbarItems("theme_config.navbar.items", nb.Items, false)
}

func (cv *configurationValidator) validateNavbarItems(prefix string, items []NavbarItem, nested bool) {
	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", prefix, i)
		if NormalizeNavbarItemType(string(item.Type)) != item.Type {
			cv.fail(field+".type", "unsupported navbar item type %q", item.Type)
			continue
		}
		if NormalizeNavbarPosition(string(item.Position)) != item.Position {
			cv.fail(field+".position", "must be left or right, got %q", item.Position)
		}
		switch item.Type {
		case NavbarDefault:
			if item.Label == "" {
				cv.fail(field+".label", "must not be empty")
			}
			cv.checkTarget(field, item.To, item.Href)
		case NavbarDocSidebar:
			if item.SidebarID == "" {
				cv.fail(field+".sidebar_id", "required for docSidebar items")
			}
		case NavbarDoc:
			if item.DocID == "" {
				cv.fail(field+".doc_id", "required for doc items")
			}
		case NavbarDropdown:
			if nested {
				cv.fail(field, "dropdowns cannot be nested")
			}
			if item.Label == "" {
				cv.fail(field+".label", "must not be empty")
			}
			if len(item.Items) == 0 {
				cv.fail(field+".items", "dropdown must have at least one item")
			}
		case NavbarHTML:
			if item.Value == "" {
				cv.fail(field+".value", "required for html items")
			}
		}
		if item.Type != NavbarDropdown && len(item.Items) > 0 {
			cv.fail(field+".items", "only dropdown items may have children")
		}
		if len(item.Items) > 0 {
			cv.validateNavbarItems(field+".items", item.Items, true)
		}
	}
}

func (cv *configurationValidator) checkTarget(field, to, href string) {
	switch {
	case to == "" && href == "":
		cv.fail(field, "exactly one of to or href is required")
	case to != "" && href != "":
		cv.fail(field, "to and href are mutually exclusive")
	case to != "" && isExternal(to):
		cv.fail(field+".to", "must be a site path, use href for external links (got %q)", to)
	case href != "":
		if u, err := url.Parse(href); err != nil || u.Scheme == "" {
			cv.fail(field+".href", "must be an absolute URL, got %q", href)
		}
	}
}

func (cv *configurationValidator) validateFooter() {
	f := cv.config.ThemeConfig.Footer
	if NormalizeFooterStyle(string(f.Style)) != f.Style {
		cv.fail("theme_config.footer.style", "must be light or dark, got %q", f.Style)
	}
	if f.Logo != nil && f.Logo.Src == "" {
		cv.fail("theme_config.footer.logo.src", "must not be empty")
	}
	for ci, col := range f.Links {
		for ii, item := range col.Items {
			field := fmt.Sprintf("theme_config.footer.links[%d].items[%d]", ci, ii)
			if item.Label == "" {
				cv.fail(field+".label", "must not be empty")
			}
			cv.checkTarget(field, item.To, item.Href)
		}
	}
	if _, err := parseCopyright(f.Copyright); err != nil {
		cv.fail("theme_config.footer.copyright", "invalid template: %v", err)
	}
}

func (cv *configurationValidator) validatePrism() {
	tc := cv.config.ThemeConfig
	p := tc.Prism
	if NormalizePrismTheme(string(p.Theme)) != p.Theme {
		cv.fail("theme_config.prism.theme", "unknown theme %q", p.Theme)
	}
	if NormalizePrismTheme(string(p.DarkTheme)) != p.DarkTheme {
		cv.fail("theme_config.prism.dark_theme", "unknown theme %q", p.DarkTheme)
	}
	for i, lang := range p.AdditionalLanguages {
		if strings.TrimSpace(lang) == "" {
			cv.fail(fmt.Sprintf("theme_config.prism.additional_languages[%d]", i), "must not be empty")
		}
	}
	if NormalizeColorMode(string(tc.ColorMode.DefaultMode)) != tc.ColorMode.DefaultMode {
		cv.fail("theme_config.color_mode.default_mode", "must be light or dark, got %q", tc.ColorMode.DefaultMode)
	}
}

// isExternal reports whether ref carries a URL scheme or is protocol-relative.
func isExternal(ref string) bool {
	return strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, "mailto:")
}

func trimSlashes(s string) string { return strings.Trim(s, "/") }
