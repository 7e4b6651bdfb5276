// Package docx provides just enough of the WordprocessingML package format to
// locate body tables in a .docx file, rewrite cell text and save the result.
//
// Parts other than the main document are never decoded: they are copied into
// the output package with their original compressed bytes and headers, so a
// document round-trips unchanged apart from the cells that were edited.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
)

const (
	// WordNamespace is the WordprocessingML main namespace.
	WordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	packageRelsPart     = "_rels/.rels"
	defaultMainPart     = "word/document.xml"
	officeDocumentRelTy = "/officeDocument"
)

var (
	ErrNotAPackage     = errors.New("docx: not a zip package")
	ErrMainPartMissing = errors.New("docx: main document part not found")
	ErrNoBody          = errors.New("docx: document has no body")
)

// Document is an opened .docx package with its main part parsed.
type Document struct {
	files    []*zip.File
	mainPart string
	xml      *etree.Document
	body     *etree.Element
}

// Open parses a .docx package held in memory.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAPackage, err)
	}

	mainPart := resolveMainPart(zr)

	var mainFile *zip.File
	for _, f := range zr.File {
		if f.Name == mainPart {
			mainFile = f
			break
		}
	}
	if mainFile == nil {
		return nil, fmt.Errorf("%w: %s", ErrMainPartMissing, mainPart)
	}

	raw, err := readZipFile(mainFile)
	if err != nil {
		return nil, fmt.Errorf("docx: read %s: %w", mainPart, err)
	}

	xmlDoc := etree.NewDocument()
	if err := xmlDoc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("docx: parse %s: %w", mainPart, err)
	}

	root := xmlDoc.Root()
	if root == nil || !isWord(root, "document") {
		return nil, fmt.Errorf("docx: %s is not a WordprocessingML document", mainPart)
	}
	body := firstWordChild(root, "body")
	if body == nil {
		return nil, ErrNoBody
	}

	return &Document{
		files:    zr.File,
		mainPart: mainPart,
		xml:      xmlDoc,
		body:     body,
	}, nil
}

// MainPart returns the package path of the main document part.
func (d *Document) MainPart() string {
	return d.mainPart
}

// Tables returns the tables that are direct children of the document body.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, el := range wordChildren(d.body, "tbl") {
		tables = append(tables, &Table{el: el})
	}
	return tables
}

// Table returns the body table at index i.
func (d *Document) Table(i int) (*Table, error) {
	tables := d.Tables()
	if i < 0 || i >= len(tables) {
		return nil, &IndexError{Err: ErrTableOutOfRange, Index: i, Len: len(tables)}
	}
	return tables[i], nil
}

// Cell is shorthand for Table(table).Row(row).Cell(col).
func (d *Document) Cell(table, row, col int) (*Cell, error) {
	t, err := d.Table(table)
	if err != nil {
		return nil, err
	}
	r, err := t.Row(row)
	if err != nil {
		return nil, fmt.Errorf("table %d: %w", table, err)
	}
	c, err := r.Cell(col)
	if err != nil {
		return nil, fmt.Errorf("table %d row %d: %w", table, row, err)
	}
	return c, nil
}

// WriteTo writes the package, with the current state of the main document
// part, to w. Output depends only on the opened bytes and the edits made.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, f := range d.files {
		if f.Name != d.mainPart {
			if err := zw.Copy(f); err != nil {
				return cw.n, fmt.Errorf("docx: copy %s: %w", f.Name, err)
			}
			continue
		}

		hdr := &zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
			Comment:  f.Comment,
		}
		if hdr.Method != zip.Store {
			hdr.Method = zip.Deflate
		}
		part, err := zw.CreateHeader(hdr)
		if err != nil {
			return cw.n, fmt.Errorf("docx: create %s: %w", f.Name, err)
		}
		if _, err := d.xml.WriteTo(part); err != nil {
			return cw.n, fmt.Errorf("docx: write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("docx: finalize package: %w", err)
	}
	return cw.n, nil
}

// Bytes serialises the package into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resolveMainPart follows the package relationship of type officeDocument.
// Packages without a readable _rels/.rels fall back to word/document.xml.
func resolveMainPart(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != packageRelsPart {
			continue
		}
		raw, err := readZipFile(f)
		if err != nil {
			return defaultMainPart
		}
		rels := etree.NewDocument()
		if err := rels.ReadFromBytes(raw); err != nil || rels.Root() == nil {
			return defaultMainPart
		}
		for _, rel := range rels.Root().ChildElements() {
			if rel.Tag != "Relationship" {
				continue
			}
			if !strings.HasSuffix(rel.SelectAttrValue("Type", ""), officeDocumentRelTy) {
				continue
			}
			target := rel.SelectAttrValue("Target", "")
			if target == "" {
				break
			}
			return strings.TrimPrefix(path.Clean("/"+target), "/")
		}
		break
	}
	return defaultMainPart
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
