package models

import (
	"net"
	"net/url"
	"strings"
	"time"
)

// Submission is a document sent for language detection.
type Submission struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text"`

	// Optional hints
	ContentLanguage string `json:"content_language,omitempty"`
	Charset         string `json:"charset,omitempty"`
	Language        string `json:"language,omitempty"`

	// PlainText disables markup skipping for this document.
	PlainText bool `json:"plain_text,omitempty"`
	// Chunks asks for the per-language byte ranges.
	Chunks bool `json:"chunks,omitempty"`

	ReceivedAt time.Time `json:"received_at,omitempty"`
}

// TLD returns the last label of the URL's host, or "" when the URL has no
// host or the host is an IP address.
func (s *Submission) TLD() string {
	u, err := url.Parse(strings.TrimSpace(s.URL))
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	if i := strings.LastIndexByte(host, '.'); i >= 0 {
		return strings.ToLower(host[i+1:])
	}
	return ""
}
