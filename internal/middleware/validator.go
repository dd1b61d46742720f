package middleware

import (
	"fmt"
	"math"
	"net"
	"net/netip"
	"net/url"
	"regexp"
	"strings"

	"github.com/bryanwahyu/sentichain/internal/domain/history"
	"github.com/bryanwahyu/sentichain/internal/domain/marketplace"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

// Input validation and sanitization utilities

// MaxTextLength caps the text accepted by analysis and chat endpoints.
const MaxTextLength = 20000

var clientNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateURL checks scheme and blocks loopback/private targets (SSRF).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("URL has no host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return fmt.Errorf("localhost/internal hosts are not allowed")
	}

	if ip := net.ParseIP(host); ip != nil {
		addr, _ := netip.AddrFromSlice(ip)
		addr = addr.Unmap()
		if addr.IsLoopback() || addr.IsUnspecified() || addr.IsPrivate() ||
			addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
			return fmt.Errorf("private or loopback addresses are not allowed")
		}
	}
	return nil
}

// ValidateText rejects oversized input. Empty text is allowed here, the
// analysis pipeline decides whether a URL makes up for it.
func ValidateText(text string) error {
	if n := len([]rune(text)); n > MaxTextLength {
		return fmt.Errorf("text too long: %d characters (max %d)", n, MaxTextLength)
	}
	return nil
}

// ValidatePrice accepts a positive, finite listing price.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return fmt.Errorf("price must be a positive number")
	}
	return nil
}

// ValidateModel accepts the three model names, case-insensitive. Empty means basic.
func ValidateModel(model string) error {
	switch strings.ToLower(strings.TrimSpace(model)) {
	case "", string(sentiment.ModelBasic), string(sentiment.ModelAdvanced), string(sentiment.ModelBlockchain):
		return nil
	}
	return fmt.Errorf("invalid model: %s (allowed: basic, advanced, blockchain)", model)
}

// ValidateHistoryFilter accepts all, blockchain or a sentiment class.
func ValidateHistoryFilter(filter string) error {
	switch strings.ToLower(filter) {
	case "", history.FilterAll, history.FilterBlockchain,
		sentiment.Positive.Class(), sentiment.Negative.Class(),
		sentiment.Neutral.Class(), sentiment.Error.Class():
		return nil
	}
	return fmt.Errorf("invalid filter: %s (allowed: all, positive, negative, neutral, error, blockchain)", filter)
}

// ValidateCategory accepts all or a known lowercase category tag.
func ValidateCategory(category string) error {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" || c == "all" || c == "general" {
		return nil
	}
	for _, topic := range sentiment.TopicNames() {
		if marketplace.CategoryTag(topic) == c {
			return nil
		}
	}
	return fmt.Errorf("invalid category: %s", category)
}

// ValidateClientName validates the API client name attached to a key.
func ValidateClientName(name string) error {
	if name == "" {
		return fmt.Errorf("client name cannot be empty")
	}
	if !clientNamePattern.MatchString(name) {
		return fmt.Errorf("invalid client name format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
