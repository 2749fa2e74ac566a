package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/dashboard-scraper/internal/domain"
)

func TestIsIdentityURL(t *testing.T) {
	hosts := defaultIdentityHosts

	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"google sign-in", "https://accounts.google.com/v3/signin/identifier?continue=x", true},
		{"google sign-in subdomain", "https://myaccount.accounts.google.com/signin", true},
		{"microsoft sign-in", "https://login.microsoftonline.com/common/oauth2", true},
		{"report url", "https://lookerstudio.google.com/reporting/abc123", false},
		{"host suffix is not a match", "https://evilaccounts.google.com.example.net/", false},
		{"unparseable", "://not-a-url", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, isIdentityURL(tc.url, hosts))
		})
	}
}

func TestCheckProfileDir(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		err := checkProfileDir(filepath.Join(t.TempDir(), "nope"))
		require.ErrorIs(t, err, domain.ErrAuthenticationRequired)
	})

	t.Run("empty directory", func(t *testing.T) {
		err := checkProfileDir(t.TempDir())
		require.ErrorIs(t, err, domain.ErrAuthenticationRequired)
	})

	t.Run("populated profile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Default"), []byte("x"), 0o644))
		require.NoError(t, checkProfileDir(dir))
	})
}
