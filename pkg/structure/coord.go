package structure

import (
	"github.com/andrew-torda/matrix"
)

// CoordMatrix puts the coordinates of atoms in an n x 3 matrix,
// one row per atom.
func CoordMatrix(atoms []*Atom) *matrix.FMatrix2d {
	m := matrix.NewFMatrix2d(len(atoms), 3)
	for i, a := range atoms {
		m.Mat[i][0] = float32(a.X)
		m.Mat[i][1] = float32(a.Y)
		m.Mat[i][2] = float32(a.Z)
	}
	return m
}
