// internal/browser/page.go
package browser

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/vgrid/internal/browser/shim"
	"github.com/xkilldash9x/vgrid/internal/vgrid/surface"
)

const (
	// BindingName is the page function the bridge reports through.
	BindingName = "vgridEmit"
	// containerSelector matches the grid containers in document order.
	containerSelector = "[data-grid]"
)

const pageCSS = `
body { margin: 0; padding: 0 24px 48px; font-family: system-ui, sans-serif; background: #f4f5f7; }
h1 { font-size: 20px; margin: 24px 0 8px; }
h2 { font-size: 16px; margin: 24px 0 8px; }
.vgrid { position: relative; min-height: 1px; }
.cell { position: absolute; top: 0; left: 0; box-sizing: border-box; padding: 12px;
  border-radius: 6px; overflow: hidden; color: #fff; }
.cell strong { display: block; font-size: 15px; white-space: nowrap; text-overflow: ellipsis; overflow: hidden; }
.cell span { display: block; font-size: 12px; opacity: .8; margin-top: 4px; }
.status-failed { background: #b3261e; }
.status-new { background: #1f4e9c; }
.status-passed { background: #2e7d32; }
`

// RenderPage builds the host document: a titled section per grid with an
// empty container, followed by the bridge script.
func RenderPage(title string, sections []string) (string, error) {
	bridge, err := shim.Bridge(shim.Config{Binding: BindingName, Selector: containerSelector})
	if err != nil {
		return "", err
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	head.AppendChild(withText(element(atom.Title), title))
	head.AppendChild(withText(element(atom.Style), pageCSS))
	root.AppendChild(head)

	body := element(atom.Body)
	body.AppendChild(withText(element(atom.H1), title))
	for i, name := range sections {
		sec := element(atom.Section, "class", "vgrid-section")
		sec.AppendChild(withText(element(atom.H2), name))
		sec.AppendChild(element(atom.Div, "class", "vgrid", "data-grid", strconv.Itoa(i)))
		body.AppendChild(sec)
	}
	body.AppendChild(withText(element(atom.Script), bridge))
	root.AppendChild(body)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return buf.String(), nil
}

// PageURL packs a rendered page into a data URL, with the anchor as its
// fragment.
func PageURL(page, anchor string) string {
	u := "data:text/html;charset=utf-8," + url.PathEscape(page)
	if anchor != "" {
		u += "#" + url.PathEscape(anchor)
	}
	return u
}

// RenderCells renders the cells of a frame as absolutely positioned blocks
// for a container of the given width.
func RenderCells(f surface.Frame[Cell], containerWidth float64) (string, error) {
	var buf bytes.Buffer
	for i, c := range f.Cells {
		pos := f.Position(i, containerWidth)
		style := fmt.Sprintf("transform: translate(%spx, %spx); width: %spx; height: %spx",
			px(pos.X), px(pos.Y), px(pos.Width), px(f.CellHeight))
		div := element(atom.Div,
			"class", "cell status-"+c.Status,
			"data-key", c.Key,
			"data-index", strconv.Itoa(f.FirstIndex+i),
			"style", style,
		)
		div.AppendChild(withText(element(atom.Strong), c.Label))
		div.AppendChild(withText(element(atom.Span), c.Detail))
		if err := html.Render(&buf, div); err != nil {
			return "", fmt.Errorf("failed to render cell %d: %w", f.FirstIndex+i, err)
		}
	}
	return buf.String(), nil
}

func element(a atom.Atom, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return n
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
