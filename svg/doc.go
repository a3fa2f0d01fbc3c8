// The svg subpackage implements the vector document abstraction consumed
// by the gsprite renderer: load a document, ask whether a named element
// exists, query its bounds, and rasterize it onto a target image.
//
// It is deliberately a subset renderer. Supported: <g> grouping with
// inherited fill, <rect>, <circle>, <ellipse>, <polygon> and <path>
// (M, L, H, V, C, Q and Z commands, absolute and relative), solid fills
// in hex or common named colors, and viewBox scaling. That subset covers
// the kind of documents game themes actually use; full SVG compliance
// is out of scope.
//
// Invalid or missing documents don't need special handling upstream:
// loading fails with an error, and the renderer treats every query
// against an unloadable document as "not found".
package svg
