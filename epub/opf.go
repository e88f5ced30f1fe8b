package epub

import (
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// chapterMediaTypes are manifest media types read as chapters.
var chapterMediaTypes = map[string]bool{
	"application/xhtml+xml": true,
	"text/html":             true,
	"application/xml":       true,
}

type manifestItem struct {
	href      string
	mediaType string
}

// packageDoc is the part of the package document needed to build a book.
type packageDoc struct {
	meta     BookMeta
	manifest map[string]manifestItem
	spine    []string
}

// parsePackage reads metadata, manifest and spine. Missing metadata fields get
// defaults, only a document which is not an OPF package is an error.
func parsePackage(data []byte) (*packageDoc, error) {
	doc, err := readXML(data)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if !is(root, nsOPF, "package") {
		return nil, fmt.Errorf("unexpected root element %q", root.FullTag())
	}

	pkg := &packageDoc{
		meta: BookMeta{
			Title:   defaultTitle,
			Creator: defaultCreator,
		},
		manifest: make(map[string]manifestItem),
	}

	if metadata := first(root, nsOPF, "metadata"); metadata != nil {
		pkg.meta = parseMetadata(metadata, attr(root, "unique-identifier"))
	}

	for _, manifest := range children(root, nsOPF, "manifest") {
		for _, item := range children(manifest, nsOPF, "item") {
			id, href := attr(item, "id"), attr(item, "href")
			if id == "" || href == "" {
				continue
			}
			// duplicate ids: the last declaration wins
			pkg.manifest[id] = manifestItem{href: href, mediaType: attr(item, "media-type")}
		}
	}

	for _, spine := range children(root, nsOPF, "spine") {
		for _, itemref := range children(spine, nsOPF, "itemref") {
			pkg.spine = append(pkg.spine, attr(itemref, "idref"))
		}
	}
	return pkg, nil
}

func parseMetadata(el *etree.Element, uniqueID string) BookMeta {
	meta := BookMeta{
		Title:    textOf(first(el, nsDC, "title"), defaultTitle),
		Creator:  textOf(first(el, nsDC, "creator"), defaultCreator),
		Language: textOf(first(el, nsDC, "language"), ""),
	}

	ids := children(el, nsDC, "identifier")
	for _, id := range ids {
		if uniqueID != "" && attr(id, "id") == uniqueID {
			meta.Identifier = normalizeIdentifier(id.Text())
			return meta
		}
	}
	if len(ids) > 0 {
		meta.Identifier = normalizeIdentifier(ids[0].Text())
	}
	return meta
}

// textOf returns trimmed element text, or def when element is absent or empty.
func textOf(el *etree.Element, def string) string {
	if el == nil {
		return def
	}
	if text := strings.TrimSpace(el.Text()); text != "" {
		return text
	}
	return def
}

// normalizeIdentifier brings UUID identifiers ("urn:uuid:...", braces, upper
// case) to canonical form and leaves anything else (ISBN, URLs) as is.
func normalizeIdentifier(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

// resolveHref makes manifest href relative to the archive root. Hrefs are
// relative to the package document directory.
func resolveHref(opfPath, href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	dir := path.Dir(opfPath)
	if dir == "." || dir == "" {
		return path.Clean(href)
	}
	return path.Clean(path.Join(dir, href))
}
