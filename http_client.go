package proxyman

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func normalizeHTTPURL(endpoint string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" {
		return "", fmt.Errorf("endpoint must include scheme")
	}
	switch strings.ToLower(parsed.Scheme) {
	case "https", "http":
		return strings.TrimRight(parsed.String(), "/"), nil
	default:
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
}
