// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractofficetextlib

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocxText(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Service Agreement</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">Acme &amp; Co </w:t></w:r><w:r><w:t>shall pay.</w:t></w:r></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
			`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>`+
			`<w:p/>`)

	content, err := ExtractDocxText(data)
	require.NoError(t, err)
	assert.Equal(t, "Service Agreement\nAcme & Co shall pay.\ncell\na\tb\nc\n", content.Text)
	assert.Equal(t, 5, content.Paragraphs)
}

func TestExtractDocxTextErrors(t *testing.T) {
	_, err := ExtractDocxText([]byte("not a zip"))
	assert.Error(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err = zw.Create("word/other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	_, err = ExtractDocxText(buf.Bytes())
	assert.ErrorContains(t, err, "document.xml not found")
}
