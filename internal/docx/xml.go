package docx

import "github.com/beevik/etree"

func isWord(el *etree.Element, local string) bool {
	return el.Tag == local && el.NamespaceURI() == WordNamespace
}

func firstWordChild(parent *etree.Element, local string) *etree.Element {
	for _, el := range parent.ChildElements() {
		if isWord(el, local) {
			return el
		}
	}
	return nil
}

func wordChildren(parent *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, el := range parent.ChildElements() {
		if isWord(el, local) {
			out = append(out, el)
		}
	}
	return out
}

// createWord appends a WordprocessingML element to parent using the same
// namespace prefix as parent, so no new namespace declarations are needed.
func createWord(parent *etree.Element, local string) *etree.Element {
	if parent.Space == "" {
		return parent.CreateElement(local)
	}
	return parent.CreateElement(parent.Space + ":" + local)
}

// wordAttr returns the value of a w:-namespaced attribute. Attributes are
// matched by local name since producers disagree on prefixing w:val.
func wordAttr(el *etree.Element, local string) string {
	for _, a := range el.Attr {
		if a.Key == local && a.Space != "xmlns" {
			return a.Value
		}
	}
	return ""
}
