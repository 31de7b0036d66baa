package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// JWT: three base64url segments separated by dots.
	jwtPattern = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)

	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)

	// URLs with embedded user:password, e.g. a remote base_url pointing at
	// a private quote server.
	credentialURLPattern = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://[^/\s:@]+:[^/\s@]+@`)
)

// DefaultRedactOptions returns the masq options applied to every log handler.
//
// Extend them per call site with NewReplaceAttr:
//
//	logging.NewReplaceAttr(masq.WithFieldName("push_token"))
func DefaultRedactOptions() []masq.Option {
	fields := []string{
		"password", "secret", "token", "apiKey", "apikey", "api_key",
		"accessToken", "access_token", "refreshToken", "refresh_token",
		"credential", "credentials", "authorization", "auth", "bearer",
		"cookie", "session", "privateKey", "private_key", "secretKey", "secret_key",
	}

	opts := make([]masq.Option, 0, len(fields)+5)
	for _, f := range fields {
		opts = append(opts, masq.WithFieldName(f))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
		masq.WithRegex(credentialURLPattern),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr func that redacts secrets using
// DefaultRedactOptions plus any extra options.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	allOpts := append(DefaultRedactOptions(), opts...)
	return masq.New(allOpts...)
}
