// Package mode resolves the build mode from the process arguments.
//
// The result is computed once in main and then passed by value; nothing else
// in the module looks at os.Args.
package mode

// Mode selects source globs, output roots and optional features such as
// source maps and live reload.
type Mode int

const (
	Development Mode = iota
	Production
)

// Argument tokens recognised by Resolve. Presence anywhere in the argument
// list is what counts, not position.
const (
	ProductionFlag = "--production"
	BuildEntry     = "build"
)

func (m Mode) String() string {
	if m == Production {
		return "production"
	}
	return "development"
}

// IsProduction reports whether m is Production.
func (m Mode) IsProduction() bool { return m == Production }

// SourceMaps reports whether transforms attach source maps in this mode.
func (m Mode) SourceMaps() bool { return m == Development }

// LiveReload reports whether the watch/serve stage exists in this mode.
func (m Mode) LiveReload() bool { return m == Development }

// Invocation is the immutable result of inspecting the process arguments.
type Invocation struct {
	Mode Mode
	// BuildEntry is set when the build entry point was named. Together with
	// Production it gates sprite task generation.
	BuildEntry bool
}

// Resolve inspects args (without the program name) for ProductionFlag and
// BuildEntry. Absence of either is the false case; there is no error path.
func Resolve(args []string) Invocation {
	var inv Invocation
	for _, arg := range args {
		switch arg {
		case ProductionFlag:
			inv.Mode = Production
		case BuildEntry:
			inv.BuildEntry = true
		}
	}
	return inv
}

// GeneratesSprites reports whether dynamic sprite tasks may be generated.
// The manifest file must also exist; that is checked by the caller.
func (i Invocation) GeneratesSprites() bool {
	return i.Mode == Production && i.BuildEntry
}
