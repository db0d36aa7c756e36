package diag

import "fmt"

// WarnKind classifies non-fatal problems.
type WarnKind byte

const (
	WarnNameMismatch WarnKind = iota // donor residue has a different name
	WarnSelection                    // missing residue could not be addressed in the engine
	WarnRefinement                   // unknown refinement level, default used
	WarnChainCount                   // target sequence and structure differ in chain count
)

func (k WarnKind) String() string {
	switch k {
	case WarnNameMismatch:
		return "residue name mismatch"
	case WarnSelection:
		return "residue selection"
	case WarnRefinement:
		return "refinement level"
	case WarnChainCount:
		return "chain count"
	}
	return "unknown"
}

// Warning is something a caller should hear about, but which does not
// stop processing.
type Warning struct {
	Kind WarnKind
	Msg  string
}

func (w Warning) String() string { return w.Kind.String() + ": " + w.Msg }

// Warnf makes a Warning with a formatted message.
func Warnf(kind WarnKind, format string, args ...any) Warning {
	return Warning{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Warnings collects warnings in the order they happen.
type Warnings []Warning

// Add appends w.
func (ws *Warnings) Add(w Warning) { *ws = append(*ws, w) }

// Addf appends a formatted warning.
func (ws *Warnings) Addf(kind WarnKind, format string, args ...any) {
	ws.Add(Warnf(kind, format, args...))
}

// Count returns how many warnings of kind there are.
func (ws Warnings) Count(kind WarnKind) int {
	n := 0
	for _, w := range ws {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
