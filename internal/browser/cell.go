// internal/browser/cell.go
package browser

import "github.com/xkilldash9x/vgrid/internal/catalog"

// Cell is what a grid renders for the page.
type Cell struct {
	Key    string
	Label  string
	Detail string
	Status string
}

// RenderItem is the render function for catalog items.
func RenderItem(it catalog.Item) Cell {
	return Cell{
		Key:    it.Key,
		Label:  it.Title,
		Detail: "#" + it.Key,
		Status: string(it.Status),
	}
}
