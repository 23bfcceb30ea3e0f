// Package field provides implementations of the FieldCodec interface for
// configurable fields. Each codec knows how to move the value of specific
// field types between a live entity and its portable document.
//
// Codecs are registered with the codec registry at startup. Field types
// without a dedicated codec use Generic.
package field
