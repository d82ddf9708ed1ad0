//go:build windows

package imageprint

import (
	"image"
	"io"
)

// printRasTerm falls back to 24-bit blanks; rasterm is not used on windows.
func printRasTerm(w io.Writer, i image.Image) error {
	return printShaded(w, i, true, true, false)
}
