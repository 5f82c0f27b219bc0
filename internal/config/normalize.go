package config

import (
	"errors"
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments made by the normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and free-text fields before defaults
// are applied. It mutates c in place. Unknown enum values are left untouched so
// that validation can reject them with a precise message.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, errors.New("config nil")
	}
	res := &NormalizationResult{}

	c.Title = strings.TrimSpace(c.Title)
	c.URL = strings.TrimSpace(c.URL)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/") {
		res.Warnings = append(res.Warnings, warnChanged("base_url", c.BaseURL, c.BaseURL+"/"))
		c.BaseURL += "/"
	}
	c.Favicon = strings.TrimSpace(c.Favicon)

	normalizeEnum("on_broken_links", &c.OnBrokenLinks, NormalizeReportingSeverity, res)
	normalizeEnum("on_broken_markdown_links", &c.OnBrokenMarkdownLinks, NormalizeReportingSeverity, res)
	normalizeEnum("on_duplicate_routes", &c.OnDuplicateRoutes, NormalizeReportingSeverity, res)

	normalizeI18n(&c.I18n, res)

	for i := range c.Presets {
		name := strings.ToLower(strings.TrimSpace(c.Presets[i].Name))
		if name != c.Presets[i].Name {
			res.Warnings = append(res.Warnings, warnChanged(fmt.Sprintf("presets[%d].name", i), c.Presets[i].Name, name))
			c.Presets[i].Name = name
		}
	}

	tc := &c.ThemeConfig
	normalizeEnum("theme_config.footer.style", &tc.Footer.Style, NormalizeFooterStyle, res)
	normalizeEnum("theme_config.prism.theme", &tc.Prism.Theme, NormalizePrismTheme, res)
	normalizeEnum("theme_config.prism.dark_theme", &tc.Prism.DarkTheme, NormalizePrismTheme, res)
	normalizeEnum("theme_config.color_mode.default_mode", &tc.ColorMode.DefaultMode, NormalizeColorMode, res)
	normalizeNavbarItems("theme_config.navbar.items", tc.Navbar.Items, res)

	return res, nil
}

func normalizeI18n(i *I18nConfig, res *NormalizationResult) {
	i.DefaultLocale = strings.TrimSpace(i.DefaultLocale)
	for idx, l := range i.Locales {
		trimmed := strings.TrimSpace(l)
		if trimmed != l {
			res.Warnings = append(res.Warnings, warnChanged(fmt.Sprintf("i18n.locales[%d]", idx), l, trimmed))
			i.Locales[idx] = trimmed
		}
	}
}

func normalizeNavbarItems(prefix string, items []NavbarItem, res *NormalizationResult) {
	for i := range items {
		field := fmt.Sprintf("%s[%d]", prefix, i)
		normalizeEnum(field+".type", &items[i].Type, NormalizeNavbarItemType, res)
		normalizeEnum(field+".position", &items[i].Position, NormalizeNavbarPosition, res)
		items[i].To = strings.TrimSpace(items[i].To)
		items[i].Href = strings.TrimSpace(items[i].Href)
		if len(items[i].Items) > 0 {
			normalizeNavbarItems(field+".items", items[i].Items, res)
		}
	}
}

func normalizeEnum[T ~string](field string, v *T, normalize func(string) T, res *NormalizationResult) {
	if strings.TrimSpace(string(*v)) == "" {
		*v = ""
		return
	}
	canonical := normalize(string(*v))
	if canonical == "" || canonical == *v {
		return
	}
	res.Warnings = append(res.Warnings, warnChanged(field, *v, canonical))
	*v = canonical
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}
