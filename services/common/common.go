package common

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/urfave/cli"
)

var (
	SessionSecretFlag = "session-secret"
	HTTPTimeoutFlag   = "http-timeout"
	UserAgentFlag     = "user-agent"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	f = append(f,
		cli.StringFlag{
			Name:   SessionSecretFlag,
			Usage:  "session secret",
			Value:  "secret123",
			EnvVar: "SESSION_SECRET",
		},
	)

	return f
}

func RegisterHTTPClientFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   HTTPTimeoutFlag,
			Usage:  "outbound http client timeout",
			Value:  15 * time.Second,
			EnvVar: "HTTP_TIMEOUT",
		},
		cli.StringFlag{
			Name:   UserAgentFlag,
			Usage:  "user agent of outbound requests",
			Value:  "cinebuzz/1.0",
			EnvVar: "USER_AGENT",
		},
	)
}

type userAgentTransport struct {
	ua    string
	inner http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.inner.RoundTrip(r)
}

func NewHTTPClient(c *cli.Context) *http.Client {
	return &http.Client{
		Timeout: c.Duration(HTTPTimeoutFlag),
		Transport: &userAgentTransport{
			ua:    c.String(UserAgentFlag),
			inner: http.DefaultTransport,
		},
	}
}

func EscapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
