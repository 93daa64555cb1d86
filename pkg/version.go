package gnbarcode

// Version and Build are set by the build system via ldflags.
var (
	// Version of the gnbarcode binary.
	Version = "v0.1.0"

	// Build timestamp of the gnbarcode binary.
	Build string
)
