package oembed

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"strings"
)

// Response is a decoded oEmbed response.
type Response struct {
	XMLName         xml.Name `json:"-" xml:"oembed"`
	Type            string   `json:"type" xml:"type"`
	Version         string   `json:"version" xml:"version"`
	Title           string   `json:"title" xml:"title"`
	AuthorName      string   `json:"author_name" xml:"author_name"`
	AuthorURL       string   `json:"author_url" xml:"author_url"`
	ProviderName    string   `json:"provider_name" xml:"provider_name"`
	ProviderURL     string   `json:"provider_url" xml:"provider_url"`
	CacheAge        Scalar   `json:"cache_age" xml:"cache_age"`
	ThumbnailURL    string   `json:"thumbnail_url" xml:"thumbnail_url"`
	ThumbnailWidth  Scalar   `json:"thumbnail_width" xml:"thumbnail_width"`
	ThumbnailHeight Scalar   `json:"thumbnail_height" xml:"thumbnail_height"`
	Width           Scalar   `json:"width" xml:"width"`
	Height          Scalar   `json:"height" xml:"height"`
	HTMLField       string   `json:"html" xml:"html"`
	URL             string   `json:"url" xml:"url"`
}

// Scalar holds a JSON number or string verbatim. Providers disagree on
// whether dimensions are numbers, numeric strings or values like "100%".
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Scalar(v)
		return nil
	}
	*s = Scalar(data)
	return nil
}

// HTML returns the embeddable fragment. Video and rich responses carry it
// directly; photo responses are rendered as an image tag.
func (r *Response) HTML() (string, error) {
	if h := strings.TrimSpace(r.HTMLField); h != "" {
		return r.HTMLField, nil
	}

	if strings.EqualFold(r.Type, "photo") && r.URL != "" {
		var b strings.Builder
		b.WriteString(`<img src="`)
		b.WriteString(html.EscapeString(r.URL))
		b.WriteString(`" alt="`)
		b.WriteString(html.EscapeString(r.Title))
		b.WriteString(`"`)
		if r.Width != "" {
			fmt.Fprintf(&b, ` width="%s"`, html.EscapeString(string(r.Width)))
		}
		if r.Height != "" {
			fmt.Fprintf(&b, ` height="%s"`, html.EscapeString(string(r.Height)))
		}
		b.WriteString(`>`)
		return b.String(), nil
	}

	return "", fmt.Errorf("%s response has no html", typeOrUnknown(r.Type))
}

func typeOrUnknown(t string) string {
	if t == "" {
		return "untyped"
	}
	return t
}

// decodeResponse parses an endpoint body as JSON or XML.
func decodeResponse(body []byte, format Format) (*Response, error) {
	var resp Response
	switch format {
	case FormatXML:
		if err := xml.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}
	default:
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	}

	if resp.Type == "" && resp.HTMLField == "" && resp.URL == "" {
		return nil, errors.New("response has neither type nor content")
	}
	return &resp, nil
}

// formatFromContentType picks the decoder from a response Content-Type,
// falling back to the requested format.
func formatFromContentType(contentType string, requested Format) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "xml"):
		return FormatXML
	}
	return requested
}
