// Package crop trims source plan pages to configured rectangles.
//
// Cropping never rasterizes: the output page keeps the source page's
// content streams and resources in their original vector form, with the
// media and crop boxes narrowed to the region. Print output is therefore
// pixel-identical to the corresponding area of the source sheet.
package crop

import (
	"github.com/sawtell/planpack/core"
	"github.com/sawtell/planpack/model"
	"github.com/sawtell/planpack/pages"
)

// CroppedPage is the result of applying a crop region to a source page.
// It holds a fresh page dictionary whose boxes equal the region; the
// content and resource objects are shared with the source document and
// resolved through Resolver when the page is serialized.
type CroppedPage struct {
	Dict     core.Dict
	Resolver pages.ObjectResolver
	Width    float64
	Height   float64
}

// Page attributes that must not carry over into a cropped copy: Parent is
// rebuilt by the output writer, and annotation or structure links would
// dangle into the source document.
var droppedPageKeys = []string{"Parent", "Annots", "StructParents", "B", "Metadata"}

// Crop trims a source page to the given region.
//
// The region is validated before the page is touched: it must have
// positive extent and lie entirely within the source page's media box.
// Out-of-bounds regions are rejected, not clamped. The source page is
// never mutated.
func Crop(page *pages.Page, region model.CropRegion) (*CroppedPage, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	mediaBox, err := page.MediaBox()
	if err != nil {
		return nil, &model.SourceDocumentError{
			Tab: region.Tab,
			Err: err,
		}
	}

	if !mediaBox.ContainsRect(region.Rect) {
		return nil, &model.GeometryError{
			Room:   region.Room,
			Tab:    region.Tab,
			Track:  region.Track,
			Region: region.Rect,
			Reason: "region lies outside the source page media box",
		}
	}

	dict := page.Dict().Clone()
	for _, key := range droppedPageKeys {
		dict.Delete(key)
	}

	// Inheritable attributes must be made explicit: the new page loses its
	// original parent chain.
	if resources, err := page.Resources(); err == nil && resources != nil {
		dict.Set("Resources", resources)
	}
	if rotate := page.Rotate(); rotate != 0 {
		dict.Set("Rotate", core.Int(rotate))
	}

	box := core.NumberArray(region.Rect.LLX, region.Rect.LLY, region.Rect.URX, region.Rect.URY)
	dict.Set("Type", core.Name("Page"))
	dict.Set("MediaBox", box)
	dict.Set("CropBox", box)

	return &CroppedPage{
		Dict:     dict,
		Resolver: page.Resolver(),
		Width:    region.Rect.Width(),
		Height:   region.Rect.Height(),
	}, nil
}
