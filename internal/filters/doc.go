// Package filters implements PDF stream filters (compression codecs).
//
// Supported decode filters:
//   - FlateDecode (zlib/deflate), including TIFF and PNG predictors,
//     which cross-reference streams commonly use
//   - ASCIIHexDecode
//   - ASCII85Decode
//
// FlateEncode is provided for generating compressed content streams in
// output documents.
package filters
