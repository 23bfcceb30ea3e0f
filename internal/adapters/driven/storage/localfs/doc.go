// Package localfs stores scheme-addressed files on the local filesystem.
//
// Each scheme (public, private, temporary) owns one directory under the
// data directory. Paths are resolved and checked against the scheme root
// before any I/O.
package localfs
