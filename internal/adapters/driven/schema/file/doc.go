// Package file loads the entity schema from a TOML file.
//
// The schema lists entity types and the configurable fields attached to
// each bundle. Codecs dispatch on the field types declared here.
package file
