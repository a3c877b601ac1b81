package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseNetrc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    map[string]netrcCredentials
	}{
		{
			name: "simple entry",
			content: `machine confluence.example.com
login user@example.com
password secret123`,
			want: map[string]netrcCredentials{
				"confluence.example.com": {Login: "user@example.com", Password: "secret123"},
			},
		},
		{
			name: "multiple entries",
			content: `machine confluence.example.com
  login conf-user@example.com
  password conf-token

machine wiki.internal.example.com
  login wiki-user@example.com
  password wiki-token`,
			want: map[string]netrcCredentials{
				"confluence.example.com":    {Login: "conf-user@example.com", Password: "conf-token"},
				"wiki.internal.example.com": {Login: "wiki-user@example.com", Password: "wiki-token"},
			},
		},
		{
			name: "with comments and empty lines",
			content: `# This is a comment
machine confluence.example.com
  # Another comment
  login user@example.com
  password secret123

# More comments
machine api.example.com
  login api-user
  password api-pass`,
			want: map[string]netrcCredentials{
				"confluence.example.com": {Login: "user@example.com", Password: "secret123"},
				"api.example.com":        {Login: "api-user", Password: "api-pass"},
			},
		},
		{
			name:    "single line format",
			content: `machine confluence.example.com login user@example.com password secret123`,
			want: map[string]netrcCredentials{
				"confluence.example.com": {Login: "user@example.com", Password: "secret123"},
			},
		},
		{
			name: "account token is consumed",
			content: `machine confluence.example.com
  login user@example.com
  password secret123
  account team1`,
			want: map[string]netrcCredentials{
				"confluence.example.com": {Login: "user@example.com", Password: "secret123"},
			},
		},
		{
			name: "default entry",
			content: `machine confluence.example.com
  login user1@example.com
  password pass1

default
  login default-user@example.com
  password default-pass`,
			want: map[string]netrcCredentials{
				"confluence.example.com": {Login: "user1@example.com", Password: "pass1"},
				"default":                {Login: "default-user@example.com", Password: "default-pass"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmp := t.TempDir()
			netrcPath := filepath.Join(tmp, ".netrc")

			if err := os.WriteFile(netrcPath, []byte(tt.content), 0600); err != nil {
				t.Fatalf("write netrc: %v", err)
			}

			got, err := parseNetrc(netrcPath)
			if err != nil {
				t.Fatalf("parseNetrc() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("parseNetrc() got %d entries, want %d", len(got), len(tt.want))
			}

			for machine, want := range tt.want {
				creds, ok := got[machine]
				if !ok {
					t.Errorf("missing entry for machine %q", machine)
					continue
				}
				if creds != want {
					t.Errorf("machine %q: got %+v, want %+v", machine, creds, want)
				}
			}
		})
	}
}

func TestParseNetrcMissingFile(t *testing.T) {
	t.Parallel()

	entries, err := parseNetrc(filepath.Join(t.TempDir(), "no-such-netrc"))
	if err != nil {
		t.Fatalf("parseNetrc() error = %v", err)
	}
	if entries != nil {
		t.Fatalf("expected nil entries, got %v", entries)
	}
}

func TestLookupNetrc(t *testing.T) {
	tests := []struct {
		name         string
		netrcContent string
		site         string
		want         netrcCredentials
	}{
		{
			name: "exact hostname match",
			netrcContent: `machine confluence.example.com
  login user@example.com
  password secret123`,
			site: "confluence.example.com",
			want: netrcCredentials{Login: "user@example.com", Password: "secret123"},
		},
		{
			name: "match with URL scheme",
			netrcContent: `machine confluence.example.com
  login user@example.com
  password secret123`,
			site: "https://confluence.example.com",
			want: netrcCredentials{Login: "user@example.com", Password: "secret123"},
		},
		{
			name: "match with URL path",
			netrcContent: `machine confluence.example.com
  login user@example.com
  password secret123`,
			site: "https://confluence.example.com/rest/api",
			want: netrcCredentials{Login: "user@example.com", Password: "secret123"},
		},
		{
			name: "match without port",
			netrcContent: `machine confluence.example.com
  login user@example.com
  password secret123`,
			site: "confluence.example.com:8090",
			want: netrcCredentials{Login: "user@example.com", Password: "secret123"},
		},
		{
			name: "default fallback",
			netrcContent: `machine other.example.com
  login other@example.com
  password other-pass

default
  login default@example.com
  password default-pass`,
			site: "confluence.example.com",
			want: netrcCredentials{Login: "default@example.com", Password: "default-pass"},
		},
		{
			name: "no match",
			netrcContent: `machine other.example.com
  login other@example.com
  password other-pass`,
			site: "confluence.example.com",
			want: netrcCredentials{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			netrcPath := filepath.Join(tmp, ".netrc")

			if err := os.WriteFile(netrcPath, []byte(tt.netrcContent), 0600); err != nil {
				t.Fatalf("write netrc: %v", err)
			}

			t.Setenv("NETRC", netrcPath)

			got, err := lookupNetrc(tt.site)
			if err != nil {
				t.Fatalf("lookupNetrc() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("lookupNetrc() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfigApplyNetrcDefaults(t *testing.T) {
	tmp := t.TempDir()
	netrcPath := filepath.Join(tmp, ".netrc")

	netrcContent := `machine confluence.example.com
  login conf@example.com
  password conf-token`

	if err := os.WriteFile(netrcPath, []byte(netrcContent), 0600); err != nil {
		t.Fatalf("write netrc: %v", err)
	}

	t.Setenv("NETRC", netrcPath)

	tests := []struct {
		name      string
		config    *Config
		wantLogin string
		wantToken string
	}{
		{
			name: "fills missing credentials",
			config: &Config{
				Confluence: ConfluenceConfig{URL: "https://confluence.example.com"},
			},
			wantLogin: "conf@example.com",
			wantToken: "conf-token",
		},
		{
			name: "explicit credentials win",
			config: &Config{
				Confluence: ConfluenceConfig{
					URL:      "https://confluence.example.com",
					Login:    "explicit@example.com",
					APIToken: "explicit-token",
				},
			},
			wantLogin: "explicit@example.com",
			wantToken: "explicit-token",
		},
		{
			name: "token alone blocks netrc lookup",
			config: &Config{
				Confluence: ConfluenceConfig{
					URL:      "https://confluence.example.com",
					APIToken: "pat-token",
				},
			},
			wantLogin: "",
			wantToken: "pat-token",
		},
		{
			name: "unknown host stays empty",
			config: &Config{
				Confluence: ConfluenceConfig{URL: "https://elsewhere.example.com"},
			},
			wantLogin: "",
			wantToken: "",
		},
		{
			name:      "no url is a no-op",
			config:    &Config{},
			wantLogin: "",
			wantToken: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.applyNetrcDefaults(); err != nil {
				t.Fatalf("applyNetrcDefaults() error = %v", err)
			}

			if tt.config.Confluence.Login != tt.wantLogin {
				t.Errorf("Login = %q, want %q", tt.config.Confluence.Login, tt.wantLogin)
			}
			if tt.config.Confluence.APIToken != tt.wantToken {
				t.Errorf("APIToken = %q, want %q", tt.config.Confluence.APIToken, tt.wantToken)
			}
		})
	}
}
