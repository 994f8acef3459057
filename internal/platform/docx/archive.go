// Package docx rewrites WordprocessingML (.docx) templates: it re-packages the
// ZIP container part by part, substitutes {placeholder} tokens, toggles native
// checkbox form fields and renders document.xml as an HTML fragment for preview.
//
// Matching is done on the raw markup rather than through a DOM, because the
// templates are hand-authored in Word and the edits must leave every byte
// outside a token untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	ErrTemplateUnreadable = errors.New("template is not a valid document archive")
	ErrPartRead           = errors.New("error reading template part")
	ErrPartWrite          = errors.New("error writing document part")
)

// Well-known part names inside a WordprocessingML package.
const (
	DocumentPart = "word/document.xml"
	StylesPart   = "word/styles.xml"
)

// PartFunc rewrites the decoded content of a single XML part.
type PartFunc func(name, content string) string

// Transform copies every entry of the src archive into a new archive, in the
// same order and with the same headers. Parts whose name ends in ".xml" are
// decoded as UTF-8 (invalid sequences become U+FFFD) and passed through fn;
// everything else is copied byte for byte. A nil fn copies XML parts as
// decoded text.
func Transform(src []byte, fn PartFunc) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateUnreadable, err)
	}

	var out bytes.Buffer
	writer := zip.NewWriter(&out)

	for _, file := range reader.File {
		if isDir(file) {
			if err := copyHeader(writer, file, nil); err != nil {
				return nil, err
			}
			continue
		}

		content, err := readPart(file)
		if err != nil {
			return nil, err
		}

		if isXMLPart(file.Name) {
			text := strings.ToValidUTF8(string(content), "\uFFFD")
			if fn != nil {
				text = fn(file.Name, text)
			}
			content = []byte(text)
		}

		if err := copyHeader(writer, file, content); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize archive: %v", ErrPartWrite, err)
	}
	return out.Bytes(), nil
}

// ReadParts returns the decoded content of the named parts that exist in the
// archive. Missing names are simply absent from the result.
func ReadParts(src []byte, names ...string) (map[string]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateUnreadable, err)
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	parts := make(map[string]string, len(names))
	for _, file := range reader.File {
		if !wanted[file.Name] || isDir(file) {
			continue
		}
		content, err := readPart(file)
		if err != nil {
			return nil, err
		}
		parts[file.Name] = strings.ToValidUTF8(string(content), "\uFFFD")
	}
	return parts, nil
}

func readPart(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrPartRead, file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPartRead, file.Name, err)
	}
	return content, nil
}

// copyHeader creates an entry from a copy of the source header so the name,
// compression method, timestamps and extra fields carry over. CRC and sizes
// are recomputed by the writer.
func copyHeader(writer *zip.Writer, source *zip.File, content []byte) error {
	header := source.FileHeader
	// With Modified set the writer appends its own extended-timestamp field
	// to Extra. The MS-DOS time fields and the copied Extra already hold the
	// source timestamps.
	header.Modified = time.Time{}

	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrPartWrite, source.Name, err)
	}
	if len(content) == 0 {
		return nil
	}
	if _, err := dst.Write(content); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPartWrite, source.Name, err)
	}
	return nil
}

func isDir(file *zip.File) bool {
	return strings.HasSuffix(file.Name, "/") || file.FileInfo().IsDir()
}

func isXMLPart(name string) bool {
	return strings.HasSuffix(name, ".xml")
}
