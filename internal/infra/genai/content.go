package genai

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
)

// imagePart turns a data URI or an http(s) URL into a message part.
func imagePart(image string) (llms.ContentPart, bool) {
	switch {
	case strings.HasPrefix(image, "data:"):
		meta, payload, ok := strings.Cut(strings.TrimPrefix(image, "data:"), ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, false
		}

		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, false
		}

		return llms.BinaryContent{MIMEType: strings.TrimSuffix(meta, ";base64"), Data: data}, true

	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return llms.ImageURLContent{URL: image}, true

	default:
		return nil, false
	}
}

// svgDataURI extracts the first <svg> document from a model answer and encodes it.
// Markup that could run script or load external content is refused.
func svgDataURI(content string) (string, error) {
	start := strings.Index(content, "<svg")
	end := strings.LastIndex(content, "</svg>")
	if start < 0 || end < start {
		return "", errors.New("model answer contains no svg document")
	}
	svg := content[start : end+len("</svg>")]

	lower := strings.ToLower(svg)
	for _, banned := range []string{"<script", "javascript:", "<foreignobject", "onload=", "href=\"http"} {
		if strings.Contains(lower, banned) {
			return "", errors.Errorf("svg contains disallowed markup %q", banned)
		}
	}

	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)), nil
}

// decodeJSON parses a model answer, tolerating a surrounding markdown code fence.
func decodeJSON(content string, v any) error {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	if err := json.Unmarshal([]byte(text), v); err != nil {
		return errors.Wrap(err, "malformed model answer")
	}

	return nil
}
