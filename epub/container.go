package epub

import (
	"fmt"

	"bookr/archive"
)

// containerPath is the fixed location of the container pointer document.
const containerPath = "META-INF/container.xml"

// packagePath returns archive path of the package document declared by the
// first rootfile of the container pointer.
func packagePath(a *archive.Archive) (string, error) {
	data, err := a.ReadFile(containerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	doc, err := readXML(data)
	if err != nil {
		return "", fmt.Errorf("%w: unable to parse %s: %w", ErrInvalidArchive, containerPath, err)
	}

	root := doc.Root()
	if !is(root, nsContainer, "container") {
		return "", fmt.Errorf("%w: unexpected root element %q in %s", ErrInvalidArchive, root.FullTag(), containerPath)
	}

	for _, rootfiles := range children(root, nsContainer, "rootfiles") {
		rootfile := first(rootfiles, nsContainer, "rootfile")
		if rootfile == nil {
			continue
		}
		fullPath := attr(rootfile, "full-path")
		if fullPath == "" {
			return "", fmt.Errorf("%w: rootfile has no full-path", ErrInvalidArchive)
		}
		return fullPath, nil
	}
	return "", fmt.Errorf("%w: missing rootfile in %s", ErrInvalidArchive, containerPath)
}
