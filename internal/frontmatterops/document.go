package frontmatterops

import "git.home.luguber.info/inful/sitebuilder/internal/frontmatter"

// Document serializes YAML frontmatter fields and joins them with body. With no
// fields the body is returned as-is.
func Document(fields map[string]any, body []byte) ([]byte, error) {
	if len(fields) == 0 {
		return body, nil
	}
	style := frontmatter.Style{Newline: "\n"}
	raw, err := frontmatter.SerializeYAML(fields, style)
	if err != nil {
		return nil, err
	}
	return frontmatter.Join(raw, body, true, style), nil
}
