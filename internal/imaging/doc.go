// Package imaging provides the image handling around colony analysis.
//
// This package loads plate photographs, prepares them for detection and
// renders results back onto them:
//   - ImageCache / LoadImageInfo: decode and cache plate images
//   - CropRegion: restrict analysis to the dish interior
//   - Preprocess: brightness, contrast and denoise adjustments
//   - Profile: brightness statistics and an Otsu threshold suggestion
//   - Overlay: circle and index annotations for detected colonies
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the
// top-left corner. For regions, (x1,y1) is inclusive and (x2,y2) is
// exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The other functions never
// modify their input image and can be called concurrently.
package imaging
