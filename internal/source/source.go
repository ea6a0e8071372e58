// Package source handles reading, decoding and line-numbering source files.
package source

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dshills/codecritic/internal/lexical"
	"github.com/dshills/codecritic/internal/profile"
)

// ErrNotText is returned for files that do not decode to valid text.
var ErrNotText = errors.New("not a text file")

// UnsupportedExtensionError is returned for files no language profile claims.
type UnsupportedExtensionError struct {
	Path string
	Ext  string
}

func (e *UnsupportedExtensionError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("%s: file has no extension; expected .js, .jsx or .py", e.Path)
	}
	return fmt.Sprintf("%s: unsupported extension %q; expected .js, .jsx or .py", e.Path, e.Ext)
}

// Document holds a loaded source file with its decoded content and metadata.
type Document struct {
	FilePath string
	Language profile.Language
	Text     string
	Lines    []string
	Hash     string
}

// Load resolves the language of path, then reads, decodes and hashes it.
func Load(path string) (*Document, error) {
	lang, err := LanguageForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source.Load: %w", err)
	}
	text, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("source.Load: %s: %w", path, err)
	}
	h := sha256.Sum256(data)
	return &Document{
		FilePath: path,
		Language: lang,
		Text:     text,
		Lines:    lexical.SplitLines(text),
		Hash:     fmt.Sprintf("sha256:%x", h),
	}, nil
}

// LanguageForPath maps a file extension to its language profile.
func LanguageForPath(path string) (profile.Language, error) {
	ext := filepath.Ext(path)
	p, ok := profile.ForExtension(ext)
	if !ok {
		return "", &UnsupportedExtensionError{Path: path, Ext: ext}
	}
	return p.Language, nil
}

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw bytes to text. A UTF-8 byte order mark is stripped and
// UTF-16 input with a byte order mark is transcoded. Anything else must
// already be valid UTF-8 without NUL bytes.
func Decode(data []byte) (string, error) {
	utf16 := bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE)
	if !utf16 && !utf8.Valid(data) {
		return "", ErrNotText
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotText, err)
	}
	if bytes.IndexByte(out, 0) >= 0 || !utf8.Valid(out) {
		return "", ErrNotText
	}
	return string(out), nil
}

// Quote returns lines start through end of doc, each prefixed by an
// L-padded line number. Out-of-range bounds are clamped.
func Quote(doc *Document, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(doc.Lines) {
		end = len(doc.Lines)
	}
	if start > end {
		return ""
	}
	format := fmt.Sprintf("L%%0%dd: %%s\n", lineNumberWidth(len(doc.Lines)))
	var b strings.Builder
	for n := start; n <= end; n++ {
		fmt.Fprintf(&b, format, n, doc.Lines[n-1])
	}
	return b.String()
}

func lineNumberWidth(totalLines int) int {
	switch {
	case totalLines >= 10000:
		return 5
	case totalLines >= 1000:
		return 4
	default:
		return 3
	}
}
