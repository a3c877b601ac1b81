package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// netrcCredentials is the login/password pair stored for one machine.
type netrcCredentials struct {
	Login    string
	Password string
}

// parseNetrc reads a netrc file into a machine -> credentials map. Tokens are
// scanned line by line so # comments stay line-scoped; "default" entries are
// stored under the literal key "default". A missing file yields a nil map.
func parseNetrc(path string) (map[string]netrcCredentials, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("netrc: open: %w", err)
	}
	defer file.Close()

	entries := make(map[string]netrcCredentials)
	machine := ""
	var current netrcCredentials
	flush := func() {
		if machine != "" {
			entries[machine] = current
		}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens := strings.Fields(line)
		for i := 0; i < len(tokens); i++ {
			switch tokens[i] {
			case "machine":
				flush()
				machine, current = "", netrcCredentials{}
				if i+1 < len(tokens) {
					machine = tokens[i+1]
					i++
				}
			case "default":
				flush()
				machine, current = "default", netrcCredentials{}
			case "login":
				if i+1 < len(tokens) {
					current.Login = tokens[i+1]
					i++
				}
			case "password":
				if i+1 < len(tokens) {
					current.Password = tokens[i+1]
					i++
				}
			case "account":
				// recognized but unused
				if i+1 < len(tokens) {
					i++
				}
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netrc: scan: %w", err)
	}

	return entries, nil
}

// lookupNetrc finds credentials for the Confluence site in the file named by
// $NETRC or in ~/.netrc. Matching tries the site's host, the host without its
// port, then a default entry; no file or no match yields empty credentials.
func lookupNetrc(site string) (netrcCredentials, error) {
	path := os.Getenv("NETRC")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return netrcCredentials{}, nil
		}
		path = filepath.Join(home, ".netrc")
	}

	entries, err := parseNetrc(path)
	if err != nil {
		return netrcCredentials{}, err
	}
	if len(entries) == 0 {
		return netrcCredentials{}, nil
	}

	host := site
	if parsed, err := url.Parse(site); err == nil && parsed.Host != "" {
		host = parsed.Host
	}

	for _, key := range []string{host, strings.Split(host, ":")[0], "default"} {
		if creds, ok := entries[key]; ok {
			return creds, nil
		}
	}

	return netrcCredentials{}, nil
}

// applyNetrcDefaults fills in a missing login/api_token pair from netrc.
// The netrc password slot carries the personal access token, matching what
// curl or git would send to the same host.
func (c *Config) applyNetrcDefaults() error {
	if c.Confluence.URL == "" {
		return nil
	}
	if c.Confluence.Login != "" || c.Confluence.APIToken != "" {
		return nil
	}

	creds, err := lookupNetrc(c.Confluence.URL)
	if err != nil {
		return fmt.Errorf("config: load netrc: %w", err)
	}

	if creds.Login != "" && creds.Password != "" {
		c.Confluence.Login = creds.Login
		c.Confluence.APIToken = creds.Password
	}

	return nil
}
