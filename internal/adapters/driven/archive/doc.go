// Package archive packs exported documents and assets into zip files and
// unpacks them for import.
package archive
