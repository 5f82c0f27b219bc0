package config

import "github.com/devscast/siteconf/internal/foundation/normalization"

// ReportingSeverity selects how a class of integrity problem is reported.
type ReportingSeverity string

const (
	SeverityIgnore ReportingSeverity = "ignore"
	SeverityLog    ReportingSeverity = "log"
	SeverityWarn   ReportingSeverity = "warn"
	SeverityThrow  ReportingSeverity = "throw"
)

var reportingSeverityNormalizer = normalization.NewNormalizer(map[string]ReportingSeverity{
	"ignore": SeverityIgnore,
	"log":    SeverityLog,
	"warn":   SeverityWarn,
	"throw":  SeverityThrow,
}, SeverityWarn)

// NormalizeReportingSeverity returns the canonical severity, or "" when raw is unknown.
func NormalizeReportingSeverity(raw string) ReportingSeverity {
	v, _ := reportingSeverityNormalizer.Lookup(raw)
	return v
}

// Fails reports whether problems reported at this severity abort the run.
func (s ReportingSeverity) Fails() bool { return s == SeverityThrow }

// Reported reports whether problems at this severity are surfaced at all.
func (s ReportingSeverity) Reported() bool { return s != SeverityIgnore && s != "" }
