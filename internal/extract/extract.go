// Package extract converts uploaded documents into plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"lessonplanner-ai/internal/apperr"
)

// Format identifies a supported document format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
)

var contentTypes = map[string]Format{
	"text/plain":      FormatText,
	"text/csv":        FormatCSV,
	"text/markdown":   FormatMarkdown,
	"text/x-markdown": FormatMarkdown,
	"application/pdf": FormatPDF,
	"text/html":       FormatHTML,
}

var extensions = map[string]Format{
	".txt":      FormatText,
	".text":     FormatText,
	".csv":      FormatCSV,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".pdf":      FormatPDF,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// DetectFormat resolves the format from the declared content type, falling
// back to the file extension when the content type is missing or generic.
func DetectFormat(fileName, contentType string) (Format, bool) {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			if f, ok := contentTypes[strings.ToLower(mediaType)]; ok {
				return f, true
			}
		}
	}
	f, ok := extensions[strings.ToLower(filepath.Ext(fileName))]
	return f, ok
}

// Extract reads r fully and returns its plain-text content. Every failure is
// reported as apperr.ErrExtraction.
func Extract(r io.Reader, fileName, contentType string) (string, error) {
	format, ok := DetectFormat(fileName, contentType)
	if !ok {
		return "", fmt.Errorf("%w: unsupported format for %q (%s)", apperr.ErrExtraction, fileName, contentType)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrExtraction, "read "+fileName, err)
	}

	var text string
	switch format {
	case FormatText, FormatCSV:
		text, err = plainText(data)
	case FormatMarkdown:
		text, err = markdownText(data)
	case FormatPDF:
		text, err = pdfText(data)
	case FormatHTML:
		text, err = htmlText(data)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.ErrExtraction, string(format)+" "+fileName, err)
	}
	return normalize(text), nil
}

func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("content is not valid UTF-8")
	}
	return string(data), nil
}

// normalize unifies line endings and trims trailing spaces on each line.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
