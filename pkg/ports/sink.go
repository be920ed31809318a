package ports

import (
	"image"
)

// DebugSink abstracts debug output for a conversion run.
// Implementations must not retain the images passed to them.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveSettingsJSON saves the resolved run settings as JSON.
	SaveSettingsJSON(data []byte) error

	// SaveEncodedFrame saves one encoded frame blob.
	SaveEncodedFrame(index int, data []byte) error

	// CollectFrame offers a decoded frame for the contact sheet.
	CollectFrame(index int, img image.Image) error

	// Flush writes any pending output such as the contact sheet.
	Flush() error
}
