// File: internal/config/env.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/net/publicsuffix"
)

// Keys read from the environment file.
const (
	EnvUsername    = "INSTAGRAM_USERNAME"
	EnvPassword    = "INSTAGRAM_PASSWORD"
	EnvComment     = "INSTAGRAM_COMMENT"
	EnvProfileURL  = "INSTAGRAM_PROFILE_URL"
	EnvUserDataDir = "CHROME_USER_DATA_DIR"
	EnvHeadless    = "CHROME_HEADLESS"
)

// DefaultEnvFile is used when no path is given on the command line.
const DefaultEnvFile = ".env"

// DefaultUserDataDir is the session directory used when CHROME_USER_DATA_DIR is unset.
const DefaultUserDataDir = ".chrome-profile"

// instagramDomain is the registrable domain every profile URL must belong to.
const instagramDomain = "instagram.com"

// ErrEnvFileNotFound is returned when the environment file does not exist.
var ErrEnvFileNotFound = errors.New("environment file not found")

// EnvConfigError reports a missing, empty or invalid environment value.
type EnvConfigError struct {
	Key    string
	Reason string
}

func (e *EnvConfigError) Error() string {
	return e.Reason
}

func missingKey(key string) *EnvConfigError {
	return &EnvConfigError{Key: key, Reason: fmt.Sprintf("missing required environment variable: %s", key)}
}

func emptyKey(key string) *EnvConfigError {
	return &EnvConfigError{Key: key, Reason: fmt.Sprintf("environment variable %s is empty", key)}
}

// Account is the immutable set of values the automation runs with.
type Account struct {
	Username   string
	Password   string
	Comment    string
	ProfileURL string
	// UserDataDir is empty when session persistence is disabled.
	UserDataDir string
	Headless    bool
}

// LoadEnvFile reads key/value pairs from a .env file. Blank lines, comment
// lines and lines without '=' are skipped. Everything after the first '=' is
// the value, taken literally apart from one pair of matching outer quotes:
// no inline comments, escapes or variable expansion.
func LoadEnvFile(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrEnvFileNotFound, path)
		}
		return nil, fmt.Errorf("could not access environment file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("environment file %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read environment file %s: %w", path, err)
	}
	return ParseEnv(string(data)), nil
}

// ParseEnv parses the contents of a .env file. See LoadEnvFile.
func ParseEnv(content string) map[string]string {
	values := make(map[string]string)
	lines := strings.FieldsFunc(content, func(r rune) bool { return r == '\n' || r == '\r' })
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return values
}

// unquote strips one pair of matching single or double quotes.
func unquote(value string) string {
	for _, q := range []string{`"`, "'"} {
		if strings.HasPrefix(value, q) && strings.HasSuffix(value, q) {
			if len(value) < 2 {
				return ""
			}
			return value[1 : len(value)-1]
		}
	}
	return value
}

// Required returns a key that must be present and non-empty.
func Required(values map[string]string, key string) (string, error) {
	value, ok := values[key]
	if !ok {
		return "", missingKey(key)
	}
	if value == "" {
		return "", emptyKey(key)
	}
	return value, nil
}

// Optional returns the trimmed value of key, or false when it is absent or blank.
func Optional(values map[string]string, key string) (string, bool) {
	value, ok := values[key]
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// ParseBool interprets the usual truthy and falsy spellings. Anything else
// yields def.
func ParseBool(value string, set bool, def bool) bool {
	if !set {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// ResolveUserDataDir turns the CHROME_USER_DATA_DIR value into a usable
// directory, creating it if needed. It returns "" when persistence is disabled.
func ResolveUserDataDir(value string, set bool) (string, error) {
	if set {
		switch strings.ToLower(value) {
		case "none", "disable", "disabled":
			return "", nil
		}
	} else {
		value = DefaultUserDataDir
	}

	dir, err := homedir.Expand(value)
	if err != nil {
		return "", &EnvConfigError{
			Key:    EnvUserDataDir,
			Reason: fmt.Sprintf("could not resolve %s %q: %v", EnvUserDataDir, value, err),
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create user data directory %s: %w", dir, err)
	}
	return dir, nil
}

// ValidateProfileURL checks that raw is an absolute http(s) URL on instagram.com.
func ValidateProfileURL(raw string) error {
	invalid := func(reason string) error {
		return &EnvConfigError{
			Key:    EnvProfileURL,
			Reason: fmt.Sprintf("environment variable %s is invalid: %s", EnvProfileURL, reason),
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return invalid(err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("scheme must be http or https")
	}
	host := u.Hostname()
	if host == "" {
		return invalid("missing host")
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return invalid(err.Error())
	}
	if domain != instagramDomain {
		return invalid(fmt.Sprintf("host %q is not on %s", host, instagramDomain))
	}
	return nil
}

// LoadAccount reads and validates every account setting from the file at path.
// All failures happen here, before any browser is started.
func LoadAccount(path string) (*Account, error) {
	values, err := LoadEnvFile(path)
	if err != nil {
		return nil, err
	}

	acct := &Account{}
	required := []struct {
		key string
		dst *string
	}{
		{EnvUsername, &acct.Username},
		{EnvPassword, &acct.Password},
		{EnvComment, &acct.Comment},
		{EnvProfileURL, &acct.ProfileURL},
	}
	for _, r := range required {
		v, err := Required(values, r.key)
		if err != nil {
			return nil, err
		}
		*r.dst = v
	}

	if err := ValidateProfileURL(acct.ProfileURL); err != nil {
		return nil, err
	}

	headless, set := Optional(values, EnvHeadless)
	acct.Headless = ParseBool(headless, set, true)

	dirValue, set := Optional(values, EnvUserDataDir)
	acct.UserDataDir, err = ResolveUserDataDir(dirValue, set)
	if err != nil {
		return nil, err
	}

	return acct, nil
}
