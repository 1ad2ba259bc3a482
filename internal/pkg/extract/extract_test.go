package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

const docxDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`

func TestExtractDocx(t *testing.T) {
	r := buildZip(t, map[string]string{"word/document.xml": docxDocumentXML})

	chunks, err := Extract("manual.docx", r)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", chunks[0].Content)
}

func TestExtractDocFallsBackToZipContainer(t *testing.T) {
	r := buildZip(t, map[string]string{"word/document.xml": docxDocumentXML})

	chunks, err := Extract("manual.doc", r)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
}

func TestExtractLegacyDocRejected(t *testing.T) {
	_, err := Extract("manual.doc", strings.NewReader("\xd0\xcf\x11\xe0 legacy binary"))
	var procErr *DocumentProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "manual.doc", procErr.Filename)
}

const sharedStringsXML = `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <si><t>Feature</t></si>
  <si><t>Login</t></si>
</sst>`

const sheetXML = `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row><c t="s"><v>0</v></c><c><v>42</v></c></row>
    <row><c t="s"><v>1</v></c><c><v>7</v></c></row>
  </sheetData>
</worksheet>`

func TestExtractXlsx(t *testing.T) {
	r := buildZip(t, map[string]string{
		"xl/sharedStrings.xml":     sharedStringsXML,
		"xl/worksheets/sheet1.xml": sheetXML,
	})

	chunks, err := Extract("features.xlsx", r)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Contains(t, chunks[0].Content, "Feature\t42")
	assert.Contains(t, chunks[0].Content, "Login\t7")
}

func TestExtractCSV(t *testing.T) {
	input := "feature,priority\nlogin,high\n\nexport,low\n"
	chunks, err := Extract("cases.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "feature\tpriority\nlogin\thigh\nexport\tlow", chunks[0].Content)
}

func TestExtractPlainText(t *testing.T) {
	chunks, err := Extract("notes.md", strings.NewReader("  # Title\nbody text  "))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "# Title\nbody text", chunks[0].Content)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := Extract("image.png", strings.NewReader("binary"))
	var procErr *DocumentProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Contains(t, procErr.Reason, "unsupported")
}

func TestExtractCorruptDocx(t *testing.T) {
	_, err := Extract("broken.docx", strings.NewReader("not a zip at all"))
	var procErr *DocumentProcessingError
	require.ErrorAs(t, err, &procErr)
}
