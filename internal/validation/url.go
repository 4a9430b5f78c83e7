package validation

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"
)

// URLValidator checks URLs handed to us by video sources before they are
// fetched or passed to a media player.
type URLValidator struct {
	// AllowedSchemes lists accepted schemes; the first is used when input has none
	AllowedSchemes []string
	// AllowLocalhost determines if localhost URLs are permitted
	AllowLocalhost bool
	// AllowPrivateIPs determines if private IP addresses are permitted
	AllowPrivateIPs bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewSourceURLValidator validates API and RSS endpoints with secure defaults.
func NewSourceURLValidator() *URLValidator {
	return &URLValidator{
		AllowedSchemes:  []string{"https", "http"},
		AllowLocalhost:  false,
		AllowPrivateIPs: false,
		MaxLength:       2048,
	}
}

// NewMediaURLValidator validates playable media references. Local files are
// accepted as absolute paths or file:// URLs.
func NewMediaURLValidator() *URLValidator {
	return &URLValidator{
		AllowedSchemes:  []string{"https", "http", "file"},
		AllowLocalhost:  false,
		AllowPrivateIPs: false,
		MaxLength:       4096,
	}
}

// Permissive returns a copy that accepts localhost and private addresses,
// for development servers and tests.
func (v *URLValidator) Permissive() *URLValidator {
	cp := *v
	cp.AllowLocalhost = true
	cp.AllowPrivateIPs = true
	return &cp
}

// ValidateAndNormalize validates input and returns its normalized form
func (v *URLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}

	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if filepath.IsAbs(input) && v.allows("file") {
		input = (&url.URL{Scheme: "file", Path: filepath.ToSlash(input)}).String()
	}

	if !strings.Contains(input, "://") && len(v.AllowedSchemes) > 0 {
		input = v.AllowedSchemes[0] + "://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if !v.allows(scheme) {
		return "", fmt.Errorf("URL must use one of %s", strings.Join(v.AllowedSchemes, ", "))
	}

	if scheme == "file" {
		if parsedURL.Path == "" || !strings.HasPrefix(parsedURL.Path, "/") {
			return "", fmt.Errorf("file URL must carry an absolute path")
		}
		if strings.Contains(parsedURL.Path, "..") {
			return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
		}
		return parsedURL.String(), nil
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}

	if err := v.validateHostSecurity(parsedURL.Host); err != nil {
		return "", err
	}

	if err := v.validatePathSecurity(parsedURL); err != nil {
		return "", err
	}

	return parsedURL.String(), nil
}

func (v *URLValidator) allows(scheme string) bool {
	for _, s := range v.AllowedSchemes {
		if s == scheme {
			return true
		}
	}
	return false
}

func (v *URLValidator) validateHostSecurity(host string) error {
	hostname := host
	if strings.Contains(host, ":") && !strings.HasSuffix(host, "]") {
		var err error
		hostname, _, err = net.SplitHostPort(host)
		if err != nil {
			return fmt.Errorf("invalid host format: %w", err)
		}
	}
	hostname = strings.Trim(hostname, "[]")

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}

	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	if isSuspiciousHostname(hostname) {
		return fmt.Errorf("suspicious hostname detected")
	}

	return nil
}

func (v *URLValidator) validatePathSecurity(parsedURL *url.URL) error {
	if strings.Contains(parsedURL.Path, "..") {
		return fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	lowerQuery := strings.ToLower(parsedURL.RawQuery)
	if strings.Contains(lowerQuery, "<script") || strings.Contains(lowerQuery, "javascript:") {
		return fmt.Errorf("suspicious query parameters detected")
	}

	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "::1" ||
		strings.HasPrefix(hostname, "127.") ||
		strings.HasSuffix(hostname, ".localhost")
}

var privateBlocks = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"127.0.0.0/8",
		"fc00::/7",
		"fe80::/10",
	}
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		if _, block, err := net.ParseCIDR(cidr); err == nil {
			blocks = append(blocks, block)
		}
	}
	return blocks
}()

func isPrivateIP(ip net.IP) bool {
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

func isSuspiciousHostname(hostname string) bool {
	switch strings.ToLower(hostname) {
	case "0.0.0.0", "255.255.255.255", "localhost.com":
		return true
	}
	return false
}
