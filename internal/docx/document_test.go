package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"report-workers/internal/docx/docxtest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func cellTexts(t *testing.T, tbl *Table) [][]string {
	t.Helper()
	var out [][]string
	for _, row := range tbl.Rows() {
		cells, err := row.Cells()
		require.NoError(t, err)
		var texts []string
		for _, c := range cells {
			if c == nil {
				texts = append(texts, "<nil>")
				continue
			}
			texts = append(texts, c.Text())
		}
		out = append(out, texts)
	}
	return out
}

func zipParts(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	parts := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		parts[f.Name] = b
	}
	return parts
}

func TestOpen_Tables(t *testing.T) {
	doc, err := Open(docxtest.ReportTemplate())
	require.NoError(t, err)

	assert.Equal(t, "word/document.xml", doc.MainPart())
	tables := doc.Tables()
	require.Len(t, tables, 2)

	assert.Equal(t, docxtest.Grid(0, 3, 4), cellTexts(t, tables[0]))
	assert.Len(t, tables[1].Rows(), 15)
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "not a zip",
			data:    []byte("plain text, not a package"),
			wantErr: ErrNotAPackage,
		},
		{
			name:    "no body",
			data:    docxtest.Package(`<w:document xmlns:w="` + WordNamespace + `"/>`),
			wantErr: ErrNoBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("malformed xml", func(t *testing.T) {
		_, err := Open(docxtest.Package(`<w:document xmlns:w="` + WordNamespace + `"><w:body><<</w:body></w:document>`))
		assert.Error(t, err)
	})

	t.Run("missing main part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("word/other.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte("<x/>"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = Open(buf.Bytes())
		assert.ErrorIs(t, err, ErrMainPartMissing)
	})
}

func TestDocument_NestedTablesAreNotCounted(t *testing.T) {
	inner := docxtest.Table([][]string{{"inner"}})
	body := `<w:tbl><w:tr><w:tc><w:p/>` + inner + `</w:tc></w:tr></w:tbl>` +
		docxtest.Table([][]string{{"second"}})
	doc, err := Open(docxtest.Package(docxtest.Document(body)))
	require.NoError(t, err)

	require.Len(t, doc.Tables(), 2)
	c, err := doc.Cell(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "second", c.Text())
}

func TestDocument_IndexErrors(t *testing.T) {
	doc, err := Open(docxtest.ReportTemplate())
	require.NoError(t, err)

	_, err = doc.Cell(2, 0, 0)
	assert.ErrorIs(t, err, ErrTableOutOfRange)

	_, err = doc.Cell(0, 3, 0)
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	_, err = doc.Cell(0, 0, 4)
	assert.ErrorIs(t, err, ErrCellOutOfRange)

	var idxErr *IndexError
	_, err = doc.Cell(1, 15, 0)
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, 15, idxErr.Index)
	assert.Equal(t, 15, idxErr.Len)
}

func TestDocument_RoundTripKeepsOtherParts(t *testing.T) {
	src := docxtest.ReportTemplate()
	doc, err := Open(src)
	require.NoError(t, err)

	c, err := doc.Cell(0, 0, 1)
	require.NoError(t, err)
	require.NoError(t, c.SetText("Ayşe Yılmaz"))

	out, err := doc.Bytes()
	require.NoError(t, err)

	before := zipParts(t, src)
	after := zipParts(t, out)
	assert.Equal(t, before["word/styles.xml"], after["word/styles.xml"])
	assert.Equal(t, before["_rels/.rels"], after["_rels/.rels"])
	assert.Equal(t, before["[Content_Types].xml"], after["[Content_Types].xml"])

	reopened, err := Open(out)
	require.NoError(t, err)
	want := docxtest.Grid(0, 3, 4)
	want[0][1] = "Ayşe Yılmaz"
	if diff := cmp.Diff(want, cellTexts(t, reopened.Tables()[0])); diff != "" {
		t.Errorf("table 0 mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_WriteIsDeterministic(t *testing.T) {
	src := docxtest.ReportTemplate()

	render := func() []byte {
		doc, err := Open(src)
		require.NoError(t, err)
		c, err := doc.Cell(1, 2, 0)
		require.NoError(t, err)
		require.NoError(t, c.SetText("Kaba motor becerileri gelişiyor.\nİnce motor becerileri yaşına uygun."))
		out, err := doc.Bytes()
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, render(), render())
}

func TestDocument_MainPartFromRelationships(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, body string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	write("_rels/.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="/word/document2.xml"/>`+
		`</Relationships>`)
	write("word/document2.xml", docxtest.Document(docxtest.Table([][]string{{"moved"}})))
	require.NoError(t, zw.Close())

	doc, err := Open(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "word/document2.xml", doc.MainPart())

	c, err := doc.Cell(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "moved", c.Text())
}
