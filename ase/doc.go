// Package ase implements a reader for Aseprite documents (.ase and .aseprite
// files).
//
// Decode reads the whole file in one pass and returns a resolved Document:
// linked cels are replaced with the content they point at, layers know their
// parent, palette chunks are folded into one final palette, and user data is
// attached directly to whatever it annotates.
//
// The reader is tolerant: a cel or tileset whose pixel data cannot be
// decompressed keeps its geometry and records the failure in its Err field,
// strings that are not valid UTF-8 decode as empty, and chunks of unknown
// types or unknown sub-types are skipped. Only a truncated file, a bad magic
// number or a reference that cannot be resolved abort decoding.
//
// Blend modes are recorded but never applied; cels are not clipped to the
// canvas.
package ase
