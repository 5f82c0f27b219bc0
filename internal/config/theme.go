package config

import "github.com/devscast/siteconf/internal/foundation/normalization"

// PresetClassic is the only supported preset: docs, blog, pages and the classic theme.
const PresetClassic = "classic"

// FooterStyle is the footer color scheme.
type FooterStyle string

const (
	FooterLight FooterStyle = "light"
	FooterDark  FooterStyle = "dark"
)

var footerStyleNormalizer = normalization.NewNormalizer(map[string]FooterStyle{
	"light": FooterLight,
	"dark":  FooterDark,
}, FooterLight)

// NormalizeFooterStyle returns the canonical style, or "" when raw is unknown.
func NormalizeFooterStyle(raw string) FooterStyle {
	v, _ := footerStyleNormalizer.Lookup(raw)
	return v
}

// ColorMode is the default color mode of the site.
type ColorMode string

const (
	ColorModeLight ColorMode = "light"
	ColorModeDark  ColorMode = "dark"
)

var colorModeNormalizer = normalization.NewNormalizer(map[string]ColorMode{
	"light": ColorModeLight,
	"dark":  ColorModeDark,
}, ColorModeLight)

// NormalizeColorMode returns the canonical mode, or "" when raw is unknown.
func NormalizeColorMode(raw string) ColorMode {
	v, _ := colorModeNormalizer.Lookup(raw)
	return v
}

// PrismTheme names a syntax-highlighting theme shipped with prism-react-renderer.
type PrismTheme string

const (
	PrismGithub  PrismTheme = "github"
	PrismDracula PrismTheme = "dracula"
)

var prismThemeNormalizer = normalization.NewNormalizer(map[string]PrismTheme{
	"dracula":              PrismDracula,
	"duotoneDark":          "duotoneDark",
	"duotoneLight":         "duotoneLight",
	"github":               PrismGithub,
	"gruvboxMaterialDark":  "gruvboxMaterialDark",
	"gruvboxMaterialLight": "gruvboxMaterialLight",
	"jettwaveDark":         "jettwaveDark",
	"jettwaveLight":        "jettwaveLight",
	"nightOwl":             "nightOwl",
	"nightOwlLight":        "nightOwlLight",
	"oceanicNext":          "oceanicNext",
	"okaidia":              "okaidia",
	"oneDark":              "oneDark",
	"oneLight":             "oneLight",
	"palenight":            "palenight",
	"shadesOfPurple":       "shadesOfPurple",
	"synthwave84":          "synthwave84",
	"ultramin":             "ultramin",
	"vsDark":               "vsDark",
	"vsLight":              "vsLight",
}, PrismGithub)

// NormalizePrismTheme returns the canonical theme name, or "" when raw is unknown.
func NormalizePrismTheme(raw string) PrismTheme {
	v, _ := prismThemeNormalizer.Lookup(raw)
	return v
}

// PrismThemes lists the supported theme names.
func PrismThemes() []string { return prismThemeNormalizer.ValidKeys() }
