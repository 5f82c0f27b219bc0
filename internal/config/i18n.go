package config

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LocaleInfo is the resolved presentation of one locale.
type LocaleInfo struct {
	Locale    string `yaml:"locale" json:"locale"`
	Label     string `yaml:"label" json:"label"`
	Direction string `yaml:"direction" json:"direction"`
	HTMLLang  string `yaml:"html_lang" json:"html_lang"`
	Default   bool   `yaml:"default" json:"default"`
}

// Locales resolves every configured locale in declared order.
func (c *Config) Locales() []LocaleInfo {
	out := make([]LocaleInfo, 0, len(c.I18n.Locales))
	for _, l := range c.I18n.Locales {
		out = append(out, c.LocaleInfo(l))
	}
	return out
}

// LocaleInfo resolves the label, text direction and html lang of a locale.
// Explicit locale_configs entries win; otherwise values are derived from the
// CLDR data in golang.org/x/text.
func (c *Config) LocaleInfo(locale string) LocaleInfo {
	info := LocaleInfo{Locale: locale, Default: locale == c.I18n.DefaultLocale}
	lc := c.I18n.LocaleConfigs[locale]

	tag, err := language.Parse(locale)
	info.Label = lc.Label
	if info.Label == "" {
		info.Label = locale
		if err == nil {
			if name := display.Self.Name(tag); name != "" {
				info.Label = name
			}
		}
	}

	info.Direction = lc.Direction
	if info.Direction == "" {
		info.Direction = "ltr"
		if err == nil && isRTL(tag) {
			info.Direction = "rtl"
		}
	}

	info.HTMLLang = lc.HTMLLang
	if info.HTMLLang == "" {
		info.HTMLLang = locale
		if err == nil {
			info.HTMLLang = tag.String()
		}
	}
	return info
}

var rtlScripts = map[string]bool{"Arab": true, "Hebr": true, "Syrc": true, "Thaa": true, "Nkoo": true, "Adlm": true}

func isRTL(tag language.Tag) bool {
	script, _ := tag.Script()
	return rtlScripts[script.String()]
}

// LocaleLabel returns the display label of locale.
func (c *Config) LocaleLabel(locale string) string { return c.LocaleInfo(locale).Label }
