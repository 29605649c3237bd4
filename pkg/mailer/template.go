package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is the front matter of a template.
type Meta struct {
	Tags    map[string]string `yaml:"tags"`
	Subject string            `yaml:"subject"`
}

// splitFrontMatter separates "---" delimited YAML front matter from the body.
// Content without front matter is returned as body.
func splitFrontMatter(content []byte) (Meta, string, error) {
	var meta Meta
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(content, []byte("---")) {
		return meta, string(content), nil
	}

	rest := bytes.TrimLeft(content[3:], "\r\n")
	end := bytes.Index(rest, []byte("\n---"))
	if end == -1 {
		return meta, "", fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}

	body := rest[end+len("\n---"):]
	body = bytes.TrimPrefix(bytes.TrimPrefix(body, []byte("\r")), []byte("\n"))
	return meta, string(body), nil
}
