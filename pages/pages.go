package pages

import (
	"fmt"

	"github.com/sawtell/planpack/core"
	"github.com/sawtell/planpack/model"
)

// ObjectResolver resolves indirect references against a source document.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// PageTree represents the PDF page tree
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page // Cached flattened page list
}

// NewPageTree creates a new page tree from the root pages dictionary
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{
		root:     root,
		resolver: resolver,
	}
}

// Count returns the total number of pages
func (t *PageTree) Count() (int, error) {
	count, ok := t.root.GetInt("Count")
	if !ok {
		return 0, fmt.Errorf("page tree missing /Count entry")
	}
	return int(count), nil
}

// GetPage returns the page at the given index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	if t.pages == nil {
		if err := t.loadPages(); err != nil {
			return nil, err
		}
	}

	if index < 0 || index >= len(t.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(t.pages))
	}

	return t.pages[index], nil
}

// Pages returns all pages as a slice
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages == nil {
		if err := t.loadPages(); err != nil {
			return nil, err
		}
	}

	return t.pages, nil
}

// loadPages traverses the page tree and builds the flattened page list
func (t *PageTree) loadPages() error {
	t.pages = make([]*Page, 0)

	if err := t.traversePageNode(t.root, nil); err != nil {
		return fmt.Errorf("failed to traverse page tree: %w", err)
	}

	return nil
}

// traversePageNode recursively traverses a page tree node.
// parent is the parent Pages dictionary for inheritable attributes.
func (t *PageTree) traversePageNode(node core.Dict, parent core.Dict) error {
	typeName, ok := node.GetName("Type")
	if !ok {
		return fmt.Errorf("page node missing /Type entry")
	}

	switch string(typeName) {
	case "Pages":
		kidsObj := node.Get("Kids")
		if kidsObj == nil {
			return fmt.Errorf("Pages node missing /Kids entry")
		}

		kidsResolved, err := t.resolver.Resolve(kidsObj)
		if err != nil {
			return fmt.Errorf("failed to resolve /Kids: %w", err)
		}

		kids, ok := kidsResolved.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Kids type: %T", kidsResolved)
		}

		for i, kidObj := range kids {
			kidResolved, err := t.resolver.Resolve(kidObj)
			if err != nil {
				return fmt.Errorf("failed to resolve kid %d: %w", i, err)
			}

			kidDict, ok := kidResolved.(core.Dict)
			if !ok {
				return fmt.Errorf("invalid kid type: %T", kidResolved)
			}

			if err := t.traversePageNode(kidDict, node); err != nil {
				return err
			}
		}

	case "Page":
		t.pages = append(t.pages, NewPage(node, parent, t.resolver))

	default:
		return fmt.Errorf("unexpected page node type: %s", typeName)
	}

	return nil
}

// Page represents a single PDF page
type Page struct {
	dict     core.Dict
	parent   core.Dict // Parent Pages node (for inheritable attributes)
	resolver ObjectResolver
}

// NewPage creates a new page from a dictionary
func NewPage(dict core.Dict, parent core.Dict, resolver ObjectResolver) *Page {
	return &Page{
		dict:     dict,
		parent:   parent,
		resolver: resolver,
	}
}

// Dict returns the page's dictionary.
func (p *Page) Dict() core.Dict {
	return p.dict
}

// Resolver returns the resolver for the page's source document.
func (p *Page) Resolver() ObjectResolver {
	return p.resolver
}

// MediaBox returns the page media box. This is inheritable, so the parent
// node is consulted when the page dictionary has no entry.
func (p *Page) MediaBox() (model.Rect, error) {
	return p.getBox("MediaBox")
}

// CropBox returns the page crop box, defaulting to MediaBox if not present.
func (p *Page) CropBox() (model.Rect, error) {
	box, err := p.getBox("CropBox")
	if err != nil {
		return p.MediaBox()
	}
	return box, nil
}

// getBox retrieves a box attribute (inheritable) as a normalized rectangle.
func (p *Page) getBox(name string) (model.Rect, error) {
	boxObj := p.inherited(name)
	if boxObj == nil {
		return model.Rect{}, fmt.Errorf("%s not found", name)
	}

	boxResolved, err := p.resolver.Resolve(boxObj)
	if err != nil {
		return model.Rect{}, fmt.Errorf("failed to resolve %s: %w", name, err)
	}

	boxArr, ok := boxResolved.(core.Array)
	if !ok {
		return model.Rect{}, fmt.Errorf("invalid %s type: %T", name, boxResolved)
	}
	if len(boxArr) != 4 {
		return model.Rect{}, fmt.Errorf("invalid %s length: %d (expected 4)", name, len(boxArr))
	}

	var coords [4]float64
	for i := range coords {
		v, ok := boxArr.GetNumber(i)
		if !ok {
			return model.Rect{}, fmt.Errorf("invalid %s element type: %T", name, boxArr.Get(i))
		}
		coords[i] = v
	}

	// A box array may list the corners in any order
	rect := model.NewRect(
		minF(coords[0], coords[2]), minF(coords[1], coords[3]),
		maxF(coords[0], coords[2]), maxF(coords[1], coords[3]),
	)
	return rect, nil
}

// Resources returns the page resources dictionary (inheritable).
func (p *Page) Resources() (core.Object, error) {
	resourcesObj := p.inherited("Resources")
	if resourcesObj == nil {
		return nil, nil // Some pages genuinely have no resources
	}
	return resourcesObj, nil
}

// Contents returns the page content stream object(s), unresolved.
func (p *Page) Contents() core.Object {
	return p.dict.Get("Contents")
}

// Rotate returns the page rotation (0, 90, 180, or 270). Inheritable.
func (p *Page) Rotate() int {
	rotateObj := p.inherited("Rotate")
	if rotateObj == nil {
		return 0
	}

	resolved, err := p.resolver.Resolve(rotateObj)
	if err != nil {
		return 0
	}
	if rotate, ok := resolved.(core.Int); ok {
		return int(rotate)
	}
	return 0
}

// inherited looks up an attribute on the page, falling back to the parent
// Pages node.
func (p *Page) inherited(name string) core.Object {
	if obj := p.dict.Get(name); obj != nil {
		return obj
	}
	if p.parent != nil {
		return p.parent.Get(name)
	}
	return nil
}

// Width returns the page width (from MediaBox)
func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box.Width(), nil
}

// Height returns the page height (from MediaBox)
func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box.Height(), nil
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
