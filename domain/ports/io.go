package ports

import "context"

// InputSource reads the text that feeds an inbound port.
type InputSource interface {
	// Read returns the full contents at path as UTF-8 text.
	// Returns *errors.MissingInputError when the contents are unavailable.
	Read(ctx context.Context, path string) (string, error)
}

// OutputSink persists payloads emitted on outbound ports.
type OutputSink interface {
	// Write replaces the contents at path with payload.
	Write(ctx context.Context, path string, payload string) error
}

// PathResolver maps a configured path to the location the store actually uses.
// The bridge uses it to watch input files on disk.
type PathResolver interface {
	Resolve(path string) (string, error)
}
