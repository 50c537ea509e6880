// Package mode defines the build variant threaded through every task.
package mode

// Mode selects which branch of a task runs. The zero value is Dev.
type Mode int

const (
	// Dev keeps debugging aids: source maps, unminified output, live reload.
	Dev Mode = iota
	// Build produces minified output in the distribution tree.
	Build
)

func (m Mode) String() string {
	switch m {
	case Dev:
		return "dev"
	case Build:
		return "build"
	default:
		return "unknown"
	}
}

// IsDev reports whether m is Dev.
func (m Mode) IsDev() bool { return m == Dev }

// IsBuild reports whether m is Build.
func (m Mode) IsBuild() bool { return m == Build }

// Flags returns the legacy dev/build flag pair. Exactly one is true.
func (m Mode) Flags() (dev, build bool) {
	return m == Dev, m == Build
}
