package config

import (
	"strings"
	"text/template"
	"time"
)

// copyrightData is the data available to the footer copyright template.
type copyrightData struct {
	Year  int
	Title string
}

func parseCopyright(raw string) (*template.Template, error) {
	return template.New("copyright").Option("missingkey=error").Parse(raw)
}

// RenderCopyright expands the footer copyright template ({{ .Year }}, {{ .Title }}).
func RenderCopyright(cfg *Config, now time.Time) (string, error) {
	tmpl, err := parseCopyright(cfg.ThemeConfig.Footer.Copyright)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, copyrightData{Year: now.Year(), Title: cfg.Title}); err != nil {
		return "", err
	}
	return sb.String(), nil
}
