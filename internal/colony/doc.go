// Package colony implements colony counting on plate photographs.
//
// The package turns a decoded raster image into a list of colonies (dark,
// roughly circular blobs on a lighter agar background) and a set of summary
// statistics over them.
//
// # Pipeline
//
//  1. Buffer: the image is flattened into a row-major RGBA byte slice.
//  2. Detect: a sparse seed scan plus 4-connected flood fill groups dark
//     pixels into blobs and keeps the ones whose equal-area radius falls
//     inside the configured size band.
//  3. Summarize: colony count, mean diameter, coverage, density and a
//     four-band size histogram.
//  4. Analyzer: runs the above on a background goroutine, stamps the
//     result, and records it in a bounded History.
//
// Detect and Summarize are pure: the same buffer and parameters always
// produce the same colonies, in the same order.
//
// # Known Limitation
//
// Seeds are sampled every third pixel in both directions. A blob small
// enough to fit entirely between sampled rows or columns is never seeded and
// therefore never reported. Blobs that survive the minimum-size filter
// (at least 5 pixels) are usually large enough to be hit, but very thin
// streaks can slip through.
//
// # Exports
//
// Results can be written as CSV (ID,X,Y,Diameter(µm),Intensity) or as a
// plaintext report. Diameters are converted to micrometres using
// Params.MicronsPerPixel.
package colony
