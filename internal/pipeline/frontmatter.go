package pipeline

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/doku2md/internal/model"
)

// Expose returns body prefixed with fm as a YAML front matter block.
func Expose(fm model.FrontMatter, body string) ([]byte, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// ParseFrontMatter splits an exposed document into its front matter and the
// Markdown body. Documents without front matter return an empty header and
// the whole source.
func ParseFrontMatter(source []byte) (model.FrontMatter, []byte, error) {
	var fm model.FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader(source), &fm)
	if err != nil {
		return model.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, body, nil
}
