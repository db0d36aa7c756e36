// Package structure is the in-memory model of a protein structure as
// read from a PDB format file.
//
// A Structure is a list of chains, each chain a list of residues, each
// residue a list of atoms. Alongside that it keeps the two defect lists
// from the file header:
//
//	REMARK 465  residues known from the sequence with no coordinates
//	REMARK 470  atoms missing from residues that are otherwise there
//
// Missing residues are kept in Structure.MissingResidues, not in the
// chains. TotalResidueList merges them back into chain order, which is
// what one wants when comparing against a model that has no gaps.
//
// Residues in a chain are ordered by sequence number, then insertion
// code. A blank insertion code comes first.
//
// Only the first model of a file is read. ANISOU and CONECT records are
// dropped, since atoms get renumbered and moved.
package structure
