// Package ocr reads plate labels using Tesseract (via gosseract/v2).
//
// Plates are usually marked with a short identifier (strain, dilution,
// date) written on the lid or rim. Reading it lets an analysis result carry
// the plate's own name instead of a camera file name.
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Building this package requires cgo.
package ocr
