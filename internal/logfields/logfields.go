package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyLocale     = "locale"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyLine       = "line"
	KeyLink       = "link"
	KeyIssueKind  = "issue_kind"
	KeySeverity   = "severity"
	KeyRoute      = "route"
	KeySource     = "source"
	KeyCount      = "count"
	KeyURL        = "url"
	KeySubject    = "subject"
	KeyTrigger    = "trigger"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Locale(l string) slog.Attr       { return slog.String(KeyLocale, l) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Link(l string) slog.Attr         { return slog.String(KeyLink, l) }
func IssueKind(k string) slog.Attr    { return slog.String(KeyIssueKind, k) }
func Severity(s string) slog.Attr     { return slog.String(KeySeverity, s) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
