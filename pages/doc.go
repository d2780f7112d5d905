// Package pages provides access to the PDF page tree: traversal of
// intermediate nodes, flattening into an ordered page list, and typed
// access to page attributes (MediaBox, CropBox, Resources, Contents,
// Rotate) with inheritance from parent nodes.
package pages
