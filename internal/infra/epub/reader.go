// Package epub reads and writes EPUB archives. The reader walks the
// package document in spine order and extracts plain text per
// document; the writer assembles a minimal EPUB2+3 summary book.
package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"booksum/internal/domain/entity"
)

// container mirrors META-INF/container.xml.
type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// packageDoc mirrors the OPF package file.
type packageDoc struct {
	Metadata struct {
		Titles   []string `xml:"title"`
		Creators []string `xml:"creator"`
	} `xml:"metadata"`
	Manifest struct {
		Items []manifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		TOC      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type manifestItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

// ncxDoc mirrors the EPUB2 NCX navigation file. NavPoints nest, so
// the walk below flattens them.
type ncxDoc struct {
	NavMap struct {
		NavPoints []navPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type navPoint struct {
	Label struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

// ReadBook opens the EPUB at epubPath and returns its metadata plus
// one Section per spine document, in reading order. Sections carry
// raw extracted text; no chapter filtering happens here.
func ReadBook(epubPath string) (entity.Book, []entity.Section, error) {
	zr, err := zip.OpenReader(epubPath)
	if err != nil {
		return entity.Book{}, nil, fmt.Errorf("%w: open %s: %v", ErrInvalidArchive, epubPath, err)
	}
	defer zr.Close()

	files := indexArchive(&zr.Reader)

	opfPath, err := locateOPF(files)
	if err != nil {
		return entity.Book{}, nil, err
	}
	opfDir := path.Dir(opfPath)
	if opfDir == "." {
		opfDir = ""
	}

	var pkg packageDoc
	if err := readXML(files, opfPath, &pkg); err != nil {
		return entity.Book{}, nil, fmt.Errorf("%w: parse package %s: %v", ErrInvalidArchive, opfPath, err)
	}
	if len(pkg.Spine.ItemRefs) == 0 {
		return entity.Book{}, nil, fmt.Errorf("%w: package %s has an empty spine", ErrInvalidArchive, opfPath)
	}

	book := entity.Book{Authors: pkg.Metadata.Creators}
	if len(pkg.Metadata.Titles) > 0 {
		book.Title = strings.TrimSpace(pkg.Metadata.Titles[0])
	}

	manifest := make(map[string]manifestItem, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		if item.ID != "" {
			manifest[item.ID] = item
		}
	}

	titles := ncxTitleMap(files, pkg, manifest, opfDir)

	var sections []entity.Section
	for _, ref := range pkg.Spine.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok {
			continue
		}
		mediaType := strings.ToLower(item.MediaType)
		if mediaType != "application/xhtml+xml" && mediaType != "text/html" {
			continue
		}

		href := joinEpubPath(opfDir, item.Href)
		raw, ok := files[href]
		if !ok {
			slog.Debug("spine document missing from archive",
				slog.String("idref", ref.IDRef),
				slog.String("href", href))
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
		if err != nil {
			slog.Warn("skipping unparseable spine document",
				slog.String("href", href),
				slog.Any("error", err))
			continue
		}

		text := documentText(doc)
		title := titles[href]
		if title == "" {
			title = displayTitle(doc)
		}
		if title == "" {
			title = strings.TrimSpace(doc.Find("title").First().Text())
		}
		if title == "" {
			title = ref.IDRef
		}
		if title == "" {
			title = path.Base(href)
		}

		sections = append(sections, entity.Section{
			OrderIndex: len(sections),
			ID:         ref.IDRef,
			Href:       href,
			Title:      title,
			RawText:    text,
		})
	}

	slog.Info("epub read",
		slog.String("path", epubPath),
		slog.String("title", book.Title),
		slog.Int("spine_documents", len(sections)))

	return book, sections, nil
}

// indexArchive slurps every archive member into memory. EPUB texts
// are small; this trades memory for random access by path.
func indexArchive(zr *zip.Reader) map[string][]byte {
	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			slog.Warn("skipping unreadable archive member",
				slog.String("name", f.Name),
				slog.Any("error", err))
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		files[path.Clean(f.Name)] = data
	}
	return files
}

// locateOPF resolves the package file path from container.xml, with
// fallbacks for archives missing or mangling the container entry.
func locateOPF(files map[string][]byte) (string, error) {
	var c container
	if err := readXML(files, "META-INF/container.xml", &c); err == nil {
		for _, rf := range c.Rootfiles {
			if rf.FullPath != "" {
				return path.Clean(rf.FullPath), nil
			}
		}
	}

	for _, candidate := range []string{"content.opf", "OEBPS/content.opf", "OPS/content.opf"} {
		if _, ok := files[candidate]; ok {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no OPF package file found", ErrInvalidArchive)
}

func readXML(files map[string][]byte, name string, v any) error {
	data, ok := files[name]
	if !ok {
		return fmt.Errorf("archive member %s not found", name)
	}
	return xml.Unmarshal(data, v)
}

// ncxTitleMap builds href -> navLabel from the NCX, the most reliable
// chapter-title source in EPUB2 books. Missing NCX yields an empty map.
func ncxTitleMap(files map[string][]byte, pkg packageDoc, manifest map[string]manifestItem, opfDir string) map[string]string {
	ncxPath := ""
	if item, ok := manifest[pkg.Spine.TOC]; ok && item.Href != "" {
		ncxPath = joinEpubPath(opfDir, item.Href)
	}
	if ncxPath == "" {
		for _, item := range pkg.Manifest.Items {
			if item.MediaType == "application/x-dtbncx+xml" || strings.HasSuffix(strings.ToLower(item.Href), ".ncx") {
				ncxPath = joinEpubPath(opfDir, item.Href)
				break
			}
		}
	}
	if ncxPath == "" {
		return map[string]string{}
	}

	var ncx ncxDoc
	if err := readXML(files, ncxPath, &ncx); err != nil {
		slog.Debug("ncx not usable", slog.String("path", ncxPath), slog.Any("error", err))
		return map[string]string{}
	}

	titles := map[string]string{}
	var walk func(points []navPoint)
	walk = func(points []navPoint) {
		for _, np := range points {
			label := strings.TrimSpace(np.Label.Text)
			src := np.Content.Src
			if label != "" && src != "" {
				// Drop fragments like chapter.xhtml#part2.
				if i := strings.IndexByte(src, '#'); i >= 0 {
					src = src[:i]
				}
				href := joinEpubPath(opfDir, src)
				if _, seen := titles[href]; !seen {
					titles[href] = label
				}
			}
			walk(np.Children)
		}
	}
	walk(ncx.NavMap.NavPoints)
	return titles
}

// joinEpubPath joins hrefs relative to the OPF directory. EPUB
// internal paths are always POSIX style.
func joinEpubPath(baseDir, href string) string {
	if baseDir == "" {
		return path.Clean(href)
	}
	return path.Clean(path.Join(baseDir, href))
}

// blockSelector lists the elements treated as one text line each.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote"

// documentText extracts readable plain text: navigation and styling
// elements removed, one line per block element, blank lines dropped.
func documentText(doc *goquery.Document) string {
	work := doc.Clone()
	work.Find("script, style, nav, header, footer, aside").Remove()

	var lines []string
	work.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks (a list inside a blockquote) show up once via
		// their innermost element; skip containers that hold blocks.
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if ln := normalizeSpace(s.Text()); ln != "" {
			lines = append(lines, ln)
		}
	})

	if len(lines) == 0 {
		// Flat documents without block markup: fall back to the whole
		// body, split on the source line breaks.
		for _, ln := range strings.Split(work.Find("body").Text(), "\n") {
			if ln = normalizeSpace(ln); ln != "" {
				lines = append(lines, ln)
			}
		}
	}

	return strings.Join(lines, "\n")
}

// headingClassRe matches Calibre-style heading class tokens such as
// s2h, s2h1, h, h1 appearing as standalone tokens.
var headingClassRe = regexp.MustCompile(`(?:^|[_\-\s])(?:s\d*)?h\d*(?:$|[_\-\s])`)

// headingTokens are the explicit class/id markers of a heading element.
var headingTokens = []string{"h1", "h2", "h3", "title", "heading", "chapter"}

// displayTitle guesses a human chapter title from the document body:
// real headings first, then heading-styled paragraphs and divs, which
// Calibre conversions use instead of h-elements.
func displayTitle(doc *goquery.Document) string {
	if t := normalizeSpace(doc.Find("h1, h2, h3").First().Text()); t != "" {
		return t
	}

	title := ""
	doc.Find("p, div").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 40 {
			return false
		}
		txt := normalizeSpace(s.Text())
		if txt == "" || len([]rune(txt)) > 140 {
			return true
		}

		class := strings.ToLower(s.AttrOr("class", ""))
		id := strings.ToLower(s.AttrOr("id", ""))
		for _, tok := range headingTokens {
			if strings.Contains(class, tok) || strings.Contains(id, tok) {
				title = txt
				return false
			}
		}
		if headingClassRe.MatchString(class) {
			title = txt
			return false
		}
		return true
	})
	return title
}

// normalizeSpace collapses runs of whitespace to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
