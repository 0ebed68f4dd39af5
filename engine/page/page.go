// Package page reads the HTML page whose sections drive the scene: one heading
// per section for the text texture and a row of point indicators.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/scrollscene/engine/scroll"
	"github.com/ericchiang/css"
	"golang.org/x/net/html"
)

// ErrNoDocument is returned when the input contains no markup.
var ErrNoDocument = errors.New("page: empty document")

var (
	sectionSelector = mustSelector("section")
	headingSelector = mustSelector("h2")
	pointSelector   = mustSelector(".point")
	titleSelector   = mustSelector("title")
)

// Document is the part of a page the scene reads.
type Document struct {
	Title string
	// Headings holds one entry per section in document order. Sections
	// without an h2 keep an empty entry so later headings keep their slot.
	Headings []string
	Points   int
}

// Sections returns the number of sections on the page.
func (d *Document) Sections() int {
	return len(d.Headings)
}

// DocumentHeight returns the scrollable document height when every section
// fills one viewport, never less than one viewport.
//
// Parameters:
//   - viewportHeight: the viewport height in pixels
//
// Returns:
//   - int: the document height in pixels
func (d *Document) DocumentHeight(viewportHeight int) int {
	return max(d.Sections(), 1) * viewportHeight
}

// PointStates returns the active flag of every point for the given section.
//
// Parameters:
//   - section: the current section index
//
// Returns:
//   - []bool: one flag per point
func (d *Document) PointStates(section int) []bool {
	return scroll.ActivePoints(d.Points, section)
}

// Parse reads an HTML page.
//
// Parameters:
//   - r: the page source
//
// Returns:
//   - *Document: the sections, headings and point count
//   - error: ErrNoDocument for empty input, or a read/parse error
func Parse(r io.Reader) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("page: read: %w", err)
	}
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, ErrNoDocument
	}

	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("page: parse: %w", err)
	}

	doc := &Document{}
	if titles := titleSelector.Select(root); len(titles) > 0 {
		doc.Title = textContent(titles[0])
	}
	for _, section := range sectionSelector.Select(root) {
		heading := ""
		if h := headingSelector.Select(section); len(h) > 0 {
			heading = textContent(h[0])
		}
		doc.Headings = append(doc.Headings, heading)
	}
	doc.Points = len(pointSelector.Select(root))
	return doc, nil
}

// Load reads and parses the page at path.
//
// Parameters:
//   - path: the HTML file
//
// Returns:
//   - *Document: the parsed page
//   - error: an open or parse error
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// textContent joins the text below n with runs of whitespace collapsed.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func mustSelector(s string) *css.Selector {
	sel, err := css.Parse(s)
	if err != nil {
		panic(fmt.Sprintf("page: bad selector %q: %v", s, err))
	}
	return sel
}
