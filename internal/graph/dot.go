package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteDOT writes edges as an undirected Graphviz graph named "itch".
// Weights are printed with six significant digits.
func WriteDOT(w io.Writer, edges []Edge) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("graph itch {\n"); err != nil {
		return err
	}
	for _, e := range edges {
		if _, err := fmt.Fprintf(bw, "\t\"%s\" -- \"%s\"[weight=%s]\n",
			e.A, e.B, strconv.FormatFloat(e.Weight, 'g', 6, 64)); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}

	return bw.Flush()
}
