// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractofficetextlib

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// maxDocumentPartBytes caps the decompressed size of word/document.xml.
const maxDocumentPartBytes = 256 << 20

// TextContent is the extracted body text of a Word document.
type TextContent struct {
	Text       string
	Paragraphs int
	WordCount  int
}

// ExtractDocxText reads the paragraphs of word/document.xml from a .docx
// archive held in memory. Table cell paragraphs are included in document
// order; headers and footers are not.
func ExtractDocxText(data []byte) (*TextContent, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	var documentFile *zip.File
	for _, file := range reader.File {
		if file.Name == "word/document.xml" {
			documentFile = file
			break
		}
	}
	if documentFile == nil {
		return nil, errors.New("document.xml not found in the archive")
	}

	rc, err := documentFile.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening document.xml: %w", err)
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(io.LimitReader(rc, maxDocumentPartBytes))
	if err != nil {
		return nil, fmt.Errorf("error parsing document.xml: %w", err)
	}

	text := strings.Join(paragraphs, "\n")
	return &TextContent{
		Text:       text,
		Paragraphs: len(paragraphs),
		WordCount:  len(strings.Fields(text)),
	}, nil
}

// readParagraphs streams WordprocessingML and returns one string per w:p.
// w:t runs are concatenated, w:tab becomes a tab and w:br or w:cr a newline.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		depth      int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				// nested paragraphs (text boxes) flatten into the outer one
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
