package config

import (
	"strings"

	"github.com/johan-st/shopdash/internal/access"
	gossh "golang.org/x/crypto/ssh"
)

// AccessRule grants a level on resources matching Pattern,
// e.g. {pattern: "promo*", level: read-write}.
type AccessRule struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
}

func (r AccessRule) ToAccessRule() access.Rule {
	return access.Rule{
		Pattern: r.Pattern,
		Level:   access.ParseLevel(r.Level),
	}
}

// User is a named operator identified by SSH keys.
type User struct {
	Name       string       `yaml:"name"`
	Admin      bool         `yaml:"admin"`
	PublicKeys []string     `yaml:"public_keys"`
	Access     []AccessRule `yaml:"access"`
}

// HasKey reports whether key is one of the user's authorized keys.
// Entries are authorized_keys lines or SHA256 fingerprints.
func (u User) HasKey(key gossh.PublicKey) bool {
	fingerprint := gossh.FingerprintSHA256(key)
	for _, entry := range u.PublicKeys {
		entry = strings.TrimSpace(entry)
		if entry == fingerprint {
			return true
		}
		parsed, _, _, _, err := gossh.ParseAuthorizedKey([]byte(entry))
		if err != nil {
			continue
		}
		if parsed.Type() == key.Type() && string(parsed.Marshal()) == string(key.Marshal()) {
			return true
		}
	}
	return false
}
