// Package atlas packs a frame sequence into a single sprite-sheet bitmap and
// describes where each frame ended up.
//
// Packing is a single-row strip: frames are placed left to right in sequence
// order at y=0, with no rotation, trimming or padding. The canvas is as wide
// as all frames together and as tall as the tallest frame; whatever a shorter
// frame does not cover stays fully transparent.
//
// The descriptor follows the widely used "hash-less array" sprite-sheet JSON
// layout:
//
//	{
//	  "frames": [
//	    {"filename": "walk1.png", "frame": {"h":32,"w":16,"x":0,"y":0},
//	     "scale": {"x":1.0,"y":1.0,"z":1.0}}
//	  ],
//	  "meta": {"format":"RGBA8888", "image":"walk.png", "scale":"1",
//	           "size": {"h":32,"w":16}, "version":"1.0"}
//	}
package atlas
