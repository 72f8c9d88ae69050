// Package tesseract provides CGO bindings for the Tesseract OCR engine
// through gosseract. It implements the driven.OCREngine interface.
//
// Build requires:
//   - Tesseract and Leptonica development libraries
//   - Install via: brew install tesseract (macOS) or apt install libtesseract-dev libleptonica-dev (Linux)
//   - Language data for every configured language (e.g. tesseract-ocr-ara)
package tesseract
