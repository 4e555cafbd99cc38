package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "twitter status",
			input:    "https://twitter.com/user/status/123",
			expected: "httpstwitter.comuserstatus123",
		},
		{
			name:     "query string stripped",
			input:    "http://www.youtube.com/watch?v=rrsxEGgQDkM",
			expected: "httpwww.youtube.comwatchvrrsxEGgQDkM",
		},
		{
			name:     "allowed punctuation kept",
			input:    "https://example.com/a-b_c.d",
			expected: "httpsexample.coma-b_c.d",
		},
		{
			name:     "non-ascii dropped",
			input:    "https://example.com/café",
			expected: "httpsexample.comcaf",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.input))
		})
	}
}

func TestKey_Stable(t *testing.T) {
	url := "https://vimeo.com/76979871?autoplay=1#t=30"
	first := Key(url)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Key(url))
	}
}

func TestKey_PunctuationCollision(t *testing.T) {
	assert.Equal(t, Key("https://example.com/a/b"), Key("https://example.com/ab"))
}

func TestKey_LongURLIsBoundedAndDeterministic(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("segment/", 60)
	other := long + "extra"

	k := Key(long)
	assert.Len(t, k, maxKeyLen)
	assert.Equal(t, k, Key(long))
	assert.NotEqual(t, k, Key(other), "different long URLs should not share a key")
	assert.True(t, strings.HasPrefix(k, "httpsexample.comsegment"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "httpsexample.com.cache", FileName(Key("https://example.com")))
}
