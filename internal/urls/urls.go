// Package urls joins site URLs, base URLs and route paths without producing
// duplicated or missing slashes.
package urls

import (
	"path"
	"strings"
)

// Join concatenates the site origin, the base URL and a route path.
//
// Exactly one slash separates each segment, a query or fragment on p is
// preserved, and the result never contains "//" outside the scheme.
//
//	Join("https://engineering.devscast.tech", "/", "blog") == "https://engineering.devscast.tech/blog"
func Join(siteURL, baseURL, p string) string {
	return strings.TrimRight(siteURL, "/") + JoinPath(baseURL, p)
}

// JoinPath joins a base URL and a route path into an absolute site path.
func JoinPath(baseURL, p string) string {
	route, suffix := splitSuffix(p)
	joined := "/" + strings.Trim(baseURL, "/") + "/" + strings.TrimLeft(route, "/")
	return collapseSlashes(joined) + suffix
}

// Joiner applies a trailing slash policy on top of Join.
// A nil TrailingSlash leaves paths as written.
type Joiner struct {
	SiteURL       string
	BaseURL       string
	TrailingSlash *bool
}

// Path returns the site-absolute path of route p.
func (j Joiner) Path(p string) string {
	return ApplyTrailingSlash(JoinPath(j.BaseURL, p), j.TrailingSlash)
}

// URL returns the fully qualified URL of route p.
func (j Joiner) URL(p string) string {
	return strings.TrimRight(j.SiteURL, "/") + j.Path(p)
}

// ApplyTrailingSlash adds (true) or strips (false) the trailing slash of the
// path portion of p. The root path and paths naming a file are left alone.
func ApplyTrailingSlash(p string, policy *bool) string {
	if policy == nil {
		return p
	}
	route, suffix := splitSuffix(p)
	if route == "/" || route == "" || path.Ext(route) != "" {
		return p
	}
	if *policy {
		if !strings.HasSuffix(route, "/") {
			route += "/"
		}
	} else {
		route = strings.TrimRight(route, "/")
	}
	return route + suffix
}

// LocalizedBaseURL returns the base URL serving locale: the base URL itself
// for the default locale, base + locale + "/" otherwise.
func LocalizedBaseURL(baseURL, locale, defaultLocale string) string {
	base := "/" + strings.Trim(baseURL, "/") + "/"
	base = collapseSlashes(base)
	if locale == "" || locale == defaultLocale {
		return base
	}
	return base + locale + "/"
}

// NormalizePath cleans a site path for comparison: leading slash, no
// duplicate slashes, "." and ".." resolved, no trailing slash (except root),
// query and fragment dropped.
func NormalizePath(p string) string {
	route, _ := splitSuffix(p)
	if route == "" {
		return "/"
	}
	cleaned := path.Clean("/" + route)
	return cleaned
}

// IsExternal reports whether ref points outside the site.
func IsExternal(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.Contains(lower, "://") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "javascript:")
}

// splitSuffix separates the path from a trailing "?query" and/or "#fragment".
func splitSuffix(p string) (route, suffix string) {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i], p[i:]
	}
	return p, ""
}

func collapseSlashes(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}
