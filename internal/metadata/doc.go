// Package metadata turns an image file into a catalog.Record.
//
// Extract reads the file size and timestamps, decodes the image header for
// dimensions and format (optionally the full pixel data), and resolves the
// capture date through an ordered list of DateProviders. The first provider
// with a value wins. The default chain prefers the EXIF capture date of JPEG
// files and falls back to the filesystem timestamp.
package metadata
