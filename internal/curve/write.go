package curve

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
)

// Write prints pts to w, one "index: value" line per point with the value in
// six-decimal fixed point.
func Write(w io.Writer, pts []Point) error {
	bw := bufio.NewWriter(w)
	for _, pt := range pts {
		if _, err := fmt.Fprintf(bw, "%d: %f\n", pt.Index, pt.Value); err != nil {
			return eris.Wrap(err, "curve: write point")
		}
	}
	if err := bw.Flush(); err != nil {
		return eris.Wrap(err, "curve: flush")
	}
	return nil
}

// WriteBoth prints the iterative sequence followed by the closed-form
// sequence with no separator between the blocks.
func (c *Curve) WriteBoth(w io.Writer) error {
	if err := Write(w, c.Iterative); err != nil {
		return err
	}
	return Write(w, c.ClosedForm)
}
