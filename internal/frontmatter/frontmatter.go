// Package frontmatter separates a content file's metadata block from its body.
//
// YAML blocks (`---`) are split and decoded here with gopkg.in/yaml.v3 so that
// scalar values come back exactly as YAML 1.2 types them (`yes` stays a string).
// TOML (`+++`) and JSON (`;;;`) blocks are delegated to github.com/adrg/frontmatter.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	adrg "github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// ErrInvalid wraps a metadata block that could not be decoded.
var ErrInvalid = errors.New("invalid frontmatter")

// Style captures the newline shape of a document for stable rewriting.
type Style struct {
	Newline string
}

// Parse returns the tag mapping and the body of a content file. A file without a
// recognizable metadata block yields an empty mapping and the whole input as body;
// so does an unterminated YAML block, which is treated as plain text.
func Parse(raw []byte) (map[string]any, []byte, error) {
	switch {
	case bytes.HasPrefix(raw, []byte("---")):
		block, body, had, _, err := Split(raw)
		if errors.Is(err, ErrMissingClosingDelimiter) {
			return map[string]any{}, raw, nil
		}
		if err != nil {
			return nil, nil, err
		}
		if !had {
			return map[string]any{}, raw, nil
		}
		fields, err := ParseYAML(block)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return fields, body, nil
	case bytes.HasPrefix(raw, []byte("+++")), bytes.HasPrefix(raw, []byte(";;;")):
		fields := map[string]any{}
		body, err := adrg.Parse(bytes.NewReader(raw), &fields)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return fields, body, nil
	default:
		return map[string]any{}, raw, nil
	}
}

// Split separates YAML frontmatter (`---` delimited) from the body.
//
// A delimiter is a line holding `---` with optional trailing whitespace; the
// closing one may end the file without a newline. If the document does not start
// with a delimiter line, had is false and body is the full input.
func Split(content []byte) (block []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	line, rest, ok := nextLine(content)
	if !ok || !isDelimiter(line) {
		return nil, content, false, style, nil
	}

	offset := 0
	for len(rest[offset:]) > 0 {
		line, after, _ := nextLine(rest[offset:])
		if isDelimiter(line) {
			return rest[:offset], after, true, style, nil
		}
		offset = len(rest) - len(after)
	}
	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// nextLine returns the first line of b including its newline and the remainder.
// ok is false when b holds no newline-terminated line and no trailing text.
func nextLine(b []byte) (line []byte, rest []byte, ok bool) {
	if len(b) == 0 {
		return nil, nil, false
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i+1], b[i+1:], true
	}
	return b, nil, true
}

func isDelimiter(line []byte) bool {
	return bytes.Equal(bytes.TrimRight(line, " \t\r\n"), []byte("---"))
}

// Join reassembles a document from a raw YAML block and body. Without had the
// body is returned unchanged.
func Join(block []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	var buf bytes.Buffer
	buf.Grow(len(block) + len(body) + 8)
	buf.WriteString("---" + nl)
	buf.Write(block)
	buf.WriteString("---" + nl)
	buf.Write(body)
	return buf.Bytes()
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(block []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(block) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(block, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	style := Style{Newline: "\n"}
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		style.Newline = "\r\n"
	}
	return style
}
