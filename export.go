package framecap

import "github.com/gogpu/framecap/asset"

// DefaultExtension is the export file extension used when none is set.
const DefaultExtension = "png"

// ExportSource associates a render target image with a downstream consumer
// that reads its pixels back.
type ExportSource struct {
	Image asset.Handle[*Image]
}

// NewExportSource wraps an image handle.
func NewExportSource(h asset.Handle[*Image]) ExportSource {
	return ExportSource{Image: h}
}

// ExportSettings controls how captured frames are labeled for export.
type ExportSettings struct {
	// Extension is the file extension recorded on captured frames.
	Extension string
}

// DefaultExportSettings returns the settings attached by SetupRenderTarget.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{Extension: DefaultExtension}
}

// ExportBundle is the component set spawned for each exported render
// target.
type ExportBundle struct {
	Source   asset.Handle[ExportSource]
	Settings ExportSettings
}
