package epub

import (
	"archive/zip"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"booksum/internal/domain/entity"
)

// WriteSummaryBook assembles the summary EPUB at outPath: an intro
// page followed by one page per chapter summary, in input order. The
// archive carries both EPUB2 (NCX) and EPUB3 (nav) navigation so
// either reader generation opens it. The write is atomic: the book is
// staged to a temp file and renamed into place.
func WriteSummaryBook(outPath string, book entity.Book, summaries []entity.ChapterSummary) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), filepath.Base(outPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeArchive(tmp, book, summaries); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return fmt.Errorf("publish output file: %w", err)
	}

	slog.Info("summary epub written",
		slog.String("path", outPath),
		slog.Int("chapters", len(summaries)))
	return nil
}

func writeArchive(w *os.File, book entity.Book, summaries []entity.ChapterSummary) error {
	zw := zip.NewWriter(w)

	// The mimetype member must be the first archive entry and must be
	// stored uncompressed, per the OCF spec.
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("write mimetype: %w", err)
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		return fmt.Errorf("write mimetype: %w", err)
	}

	bookID := uuid.NewString()
	title := book.Title
	if title == "" {
		title = "Untitled"
	}
	summaryTitle := title + " — Summary"

	entries := map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      packageOPF(bookID, summaryTitle, book.Authors, summaries),
		"OEBPS/toc.ncx":          tocNCX(bookID, summaryTitle, summaries),
		"OEBPS/nav.xhtml":        navXHTML(summaries),
		"OEBPS/intro.xhtml":      introXHTML(summaryTitle, title, len(summaries)),
	}
	for i, s := range summaries {
		entries[summaryPath(i)] = summaryXHTML(s)
	}

	// Deterministic member order: container, OPF, navigation, pages.
	names := []string{"META-INF/container.xml", "OEBPS/content.opf", "OEBPS/toc.ncx", "OEBPS/nav.xhtml", "OEBPS/intro.xhtml"}
	for i := range summaries {
		names = append(names, summaryPath(i))
	}

	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		if _, err := fw.Write([]byte(entries[name])); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

func summaryPath(i int) string {
	return fmt.Sprintf("OEBPS/summary_%03d.xhtml", i+1)
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

func packageOPF(bookID, title string, authors []string, summaries []entity.ChapterSummary) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
`)
	fmt.Fprintf(&b, "    <dc:identifier id=\"bookid\">urn:uuid:%s</dc:identifier>\n", bookID)
	fmt.Fprintf(&b, "    <dc:title>%s</dc:title>\n", html.EscapeString(title))
	for _, a := range authors {
		fmt.Fprintf(&b, "    <dc:creator>%s</dc:creator>\n", html.EscapeString(a))
	}
	b.WriteString(`    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="intro" href="intro.xhtml" media-type="application/xhtml+xml"/>
`)
	for i := range summaries {
		fmt.Fprintf(&b, "    <item id=\"sum_%03d\" href=\"summary_%03d.xhtml\" media-type=\"application/xhtml+xml\"/>\n", i+1, i+1)
	}
	b.WriteString(`  </manifest>
  <spine toc="ncx">
    <itemref idref="nav"/>
    <itemref idref="intro"/>
`)
	for i := range summaries {
		fmt.Fprintf(&b, "    <itemref idref=\"sum_%03d\"/>\n", i+1)
	}
	b.WriteString(`  </spine>
</package>
`)
	return b.String()
}

func tocNCX(bookID, title string, summaries []entity.ChapterSummary) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
`)
	fmt.Fprintf(&b, "    <meta name=\"dtb:uid\" content=\"urn:uuid:%s\"/>\n", bookID)
	b.WriteString("  </head>\n")
	fmt.Fprintf(&b, "  <docTitle><text>%s</text></docTitle>\n", html.EscapeString(title))
	b.WriteString("  <navMap>\n")
	b.WriteString(`    <navPoint id="intro" playOrder="1">
      <navLabel><text>Overview</text></navLabel>
      <content src="intro.xhtml"/>
    </navPoint>
`)
	for i, s := range summaries {
		fmt.Fprintf(&b, `    <navPoint id="sum_%03d" playOrder="%d">
      <navLabel><text>%s</text></navLabel>
      <content src="summary_%03d.xhtml"/>
    </navPoint>
`, i+1, i+2, html.EscapeString(s.Title), i+1)
	}
	b.WriteString("  </navMap>\n</ncx>\n")
	return b.String()
}

func navXHTML(summaries []entity.ChapterSummary) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>Contents</title></head>
<body>
  <nav epub:type="toc">
    <h1>Contents</h1>
    <ol>
      <li><a href="intro.xhtml">Overview</a></li>
`)
	for i, s := range summaries {
		fmt.Fprintf(&b, "      <li><a href=\"summary_%03d.xhtml\">%s</a></li>\n", i+1, html.EscapeString(s.Title))
	}
	b.WriteString(`    </ol>
  </nav>
</body>
</html>
`)
	return b.String()
}

func introXHTML(summaryTitle, originalTitle string, chapterCount int) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>%s</title></head>
<body>
  <h1>Summaries</h1>
  <p>Book: %s</p>
  <p>%d chapter summaries.</p>
</body>
</html>
`, html.EscapeString(summaryTitle), html.EscapeString(originalTitle), chapterCount)
}

func summaryXHTML(s entity.ChapterSummary) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>`)
	b.WriteString(html.EscapeString(s.Title))
	b.WriteString("</title></head>\n<body>\n")
	fmt.Fprintf(&b, "  <h2>%s</h2>\n", html.EscapeString(s.Title))
	b.WriteString(summaryToHTML(s.Summary))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// summaryToHTML is light formatting only: "- " lines become list
// items, everything else a paragraph. Model output is untrusted text,
// so every line is escaped.
func summaryToHTML(summary string) string {
	var htmlLines []string
	inList := false
	closeList := func() {
		if inList {
			htmlLines = append(htmlLines, "</ul>")
			inList = false
		}
	}

	for _, ln := range strings.Split(summary, "\n") {
		ln = strings.TrimRight(ln, " \t")
		trimmed := strings.TrimSpace(ln)
		if trimmed == "" {
			closeList()
			continue
		}
		if strings.HasPrefix(trimmed, "- ") {
			if !inList {
				htmlLines = append(htmlLines, "<ul>")
				inList = true
			}
			htmlLines = append(htmlLines, "<li>"+html.EscapeString(strings.TrimPrefix(trimmed, "- "))+"</li>")
			continue
		}
		closeList()
		htmlLines = append(htmlLines, "<p>"+html.EscapeString(ln)+"</p>")
	}
	closeList()

	return strings.Join(htmlLines, "\n")
}
