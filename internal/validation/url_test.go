package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLValidator_IsValidURL(t *testing.T) {
	v := NewURLValidator(nil)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "https url", url: "https://example.com", want: true},
		{name: "http url with path and query", url: "http://example.com/a/b?c=d#e", want: true},
		{name: "url with port", url: "http://localhost:8080/health", want: true},
		{name: "empty string", url: "", want: false},
		{name: "no scheme", url: "invalid-url", want: false},
		{name: "bare host", url: "example.com", want: false},
		{name: "scheme without host", url: "https://", want: false},
		{name: "unsupported scheme", url: "ftp://example.com/file", want: false},
		{name: "javascript scheme", url: "javascript:alert(1)", want: false},
		{name: "whitespace", url: "https://exa mple.com", want: false},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", 2048), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsValidURL(tt.url))
		})
	}
}
