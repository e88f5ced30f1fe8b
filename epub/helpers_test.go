package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	name    string
	content string
}

// writeEPUB creates book file in temporary directory. Mimetype is always
// stored first and uncompressed.
func writeEPUB(t *testing.T, entries ...entry) string {
	t.Helper()

	fname := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatalf("Failed to create epub file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("Failed to create mimetype: %v", err)
	}
	if _, err := io.WriteString(w, "application/epub+zip"); err != nil {
		t.Fatalf("Failed to write mimetype: %v", err)
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("Failed to create %s: %v", e.name, err)
		}
		if _, err := io.WriteString(w, e.content); err != nil {
			t.Fatalf("Failed to write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finalize epub: %v", err)
	}
	return fname
}

func containerXML(opfPath string) entry {
	return entry{containerPath, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="%s" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`, opfPath)}
}

func packageXML(name, metadata, manifest, spine string) entry {
	return entry{name, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">%s</metadata>
  <manifest>%s</manifest>
  <spine toc="ncx">%s</spine>
</package>`, metadata, manifest, spine)}
}

func xhtml(name, body string) entry {
	return entry{name, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><meta charset="utf-8"/></head><body>%s</body></html>`, body)}
}
