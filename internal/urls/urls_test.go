package urls

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	const site = "https://engineering.devscast.tech"
	cases := []struct {
		name, site, base, path, want string
	}{
		{"root base", site, "/", "blog", site + "/blog"},
		{"leading slash path", site, "/", "/docs/intro", site + "/docs/intro"},
		{"site trailing slash", site + "/", "/", "/blog/", site + "/blog/"},
		{"empty path", site, "/", "", site + "/"},
		{"nested base", site, "/engineering/", "/docs", site + "/engineering/docs"},
		{"base without slashes", site, "engineering", "docs", site + "/engineering/docs"},
		{"duplicate slashes", site, "//", "//docs//intro", site + "/docs/intro"},
		{"query kept", site, "/", "/search?q=a//b", site + "/search?q=a//b"},
		{"fragment kept", site, "/", "docs/intro#setup", site + "/docs/intro#setup"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Join(tc.site, tc.base, tc.path)
			require.Equal(t, tc.want, got)
			rest := strings.TrimPrefix(got, "https://")
			if i := strings.IndexAny(rest, "?#"); i >= 0 {
				rest = rest[:i]
			}
			require.NotContains(t, rest, "//")
		})
	}
}

func TestJoiner_TrailingSlashPolicy(t *testing.T) {
	yes, no := true, false

	j := Joiner{SiteURL: "https://example.com", BaseURL: "/"}
	require.Equal(t, "/blog", j.Path("blog"))
	require.Equal(t, "/blog/", j.Path("blog/"))

	j.TrailingSlash = &yes
	require.Equal(t, "/blog/", j.Path("blog"))
	require.Equal(t, "/blog/#top", j.Path("blog#top"))
	require.Equal(t, "/img/logo.png", j.Path("img/logo.png"))
	require.Equal(t, "https://example.com/", j.URL("/"))

	j.TrailingSlash = &no
	require.Equal(t, "/blog", j.Path("blog/"))
	require.Equal(t, "/", j.Path(""))
}

func TestLocalizedBaseURL(t *testing.T) {
	require.Equal(t, "/", LocalizedBaseURL("/", "en", "en"))
	require.Equal(t, "/fr/", LocalizedBaseURL("/", "fr", "en"))
	require.Equal(t, "/engineering/fr/", LocalizedBaseURL("/engineering/", "fr", "en"))
	require.Equal(t, "/engineering/", LocalizedBaseURL("engineering", "", "en"))
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                 "/",
		"/":                "/",
		"docs/intro/":      "/docs/intro",
		"//docs//intro":    "/docs/intro",
		"/docs/./a/../b":   "/docs/b",
		"/blog?page=2":     "/blog",
		"/docs/intro#anch": "/docs/intro",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizePath(in), in)
	}
}

func TestIsExternal(t *testing.T) {
	require.True(t, IsExternal("https://github.com/devscast"))
	require.True(t, IsExternal("//cdn.example.com/x.js"))
	require.True(t, IsExternal("mailto:team@devscast.tech"))
	require.False(t, IsExternal("/docs/intro"))
	require.False(t, IsExternal("../intro.md"))
}
