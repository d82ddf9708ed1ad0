// Package frames holds the ordered set of source images an atlas is built
// from.
//
// A Sequence is the only place where automatic ordering happens. Newly added
// frames are positioned by their natural sort key (the first run of decimal
// digits in their name, so that "walk2.png" comes before "walk10.png") and
// merged into the current order. Manual reordering with MoveFrame is kept
// across later additions: existing frames are never re-sorted among
// themselves.
//
// Decoding is delegated to a Decoder. All images passed to one AddFrames call
// are decoded concurrently, and nothing is merged until every one of them has
// either succeeded or failed.
package frames
