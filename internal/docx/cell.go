package docx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrInvalidText is returned for text holding characters XML cannot carry,
// such as NUL or other C0 controls besides tab, LF and CR.
var ErrInvalidText = errors.New("text is not XML compatible")

// Cell is a w:tc element.
type Cell struct {
	el *etree.Element
}

// Text returns the visible text of the cell. Paragraphs are separated by
// "\n", tabs become "\t" and line breaks "\n".
func (c *Cell) Text() string {
	var paragraphs []string
	for _, p := range wordChildren(c.el, "p") {
		var sb strings.Builder
		collectText(p, &sb)
		paragraphs = append(paragraphs, sb.String())
	}
	return strings.Join(paragraphs, "\n")
}

// SetText replaces the content of the cell with a single paragraph holding
// one run of text. Cell properties (w:tcPr) are kept. Text that XML cannot
// carry is rejected and leaves the cell unchanged.
func (c *Cell) SetText(text string) error {
	if err := checkXMLText(text); err != nil {
		return err
	}

	for i := len(c.el.Child) - 1; i >= 0; i-- {
		if el, ok := c.el.Child[i].(*etree.Element); ok && isWord(el, "tcPr") {
			continue
		}
		c.el.RemoveChildAt(i)
	}

	p := createWord(c.el, "p")
	r := createWord(p, "r")
	appendRunText(r, text)
	return nil
}

// checkXMLText accepts only the XML 1.0 Char production.
func checkXMLText(text string) error {
	for i, ch := range text {
		switch {
		case ch == '\t' || ch == '\n' || ch == '\r':
		case ch >= 0x20 && ch <= 0xD7FF:
		case ch >= 0xE000 && ch <= 0xFFFD:
		case ch >= 0x10000 && ch <= 0x10FFFF:
		default:
			return fmt.Errorf("%w: %U at byte %d", ErrInvalidText, ch, i)
		}
	}
	return nil
}

// appendRunText writes text into run r, mapping tabs to w:tab and each CR or
// LF to its own w:br. Everything else goes into w:t elements.
func appendRunText(r *etree.Element, text string) {
	var pending strings.Builder
	flush := func() {
		if pending.Len() == 0 {
			return
		}
		s := pending.String()
		t := createWord(r, "t")
		if strings.TrimSpace(s) != s {
			t.CreateAttr("xml:space", "preserve")
		}
		t.SetText(s)
		pending.Reset()
	}

	for i := 0; i < len(text); i++ {
		switch ch := text[i]; ch {
		case '\t':
			flush()
			createWord(r, "tab")
		case '\r', '\n':
			flush()
			createWord(r, "br")
		default:
			pending.WriteByte(ch)
		}
	}
	flush()
}

func collectText(el *etree.Element, sb *strings.Builder) {
	for _, child := range el.ChildElements() {
		if child.NamespaceURI() != WordNamespace {
			continue
		}
		switch child.Tag {
		case "t":
			sb.WriteString(child.Text())
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		case "p", "tbl", "tcPr", "pPr", "rPr":
			// nested block content and properties carry no run text here
		default:
			collectText(child, sb)
		}
	}
}
