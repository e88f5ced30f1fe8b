package epub

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

const (
	nsContainer = "urn:oasis:names:tc:opendocument:xmlns:container"
	nsOPF       = "http://www.idpf.org/2007/opf"
	nsDC        = "http://purl.org/dc/elements/1.1/"
)

// readXML parses data into DOM. Package documents declaring non UTF-8
// encodings are converted on the fly.
func readXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return doc, nil
}

// is reports whether element has requested local name in requested namespace.
func is(el *etree.Element, ns, local string) bool {
	return el.Tag == local && el.NamespaceURI() == ns
}

// children returns direct child elements with requested name in document order.
func children(el *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if is(child, ns, local) {
			out = append(out, child)
		}
	}
	return out
}

// first returns first direct child element with requested name or nil.
func first(el *etree.Element, ns, local string) *etree.Element {
	for _, child := range el.ChildElements() {
		if is(child, ns, local) {
			return child
		}
	}
	return nil
}

func attr(el *etree.Element, key string) string {
	return strings.TrimSpace(el.SelectAttrValue(key, ""))
}
