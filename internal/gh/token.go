package gh

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// ResolveToken returns the GitHub token to use for API requests.
// Precedence: PODSCAN_GITHUB_TOKEN, GITHUB_TOKEN, then the github.token
// key of the user's gitconfig. Returns "" when none is configured;
// unauthenticated requests are fine for the low call volume here.
func ResolveToken() string {
	if tok := strings.TrimSpace(os.Getenv("PODSCAN_GITHUB_TOKEN")); tok != "" {
		return tok
	}
	if tok := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); tok != "" {
		return tok
	}
	return tokenFromGitconfig()
}

func tokenFromGitconfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	cfg, err := ini.Load(filepath.Join(home, ".gitconfig"))
	if err != nil {
		return ""
	}

	section := cfg.Section("github")
	if section == nil {
		return ""
	}
	return strings.TrimSpace(section.Key("token").String())
}
