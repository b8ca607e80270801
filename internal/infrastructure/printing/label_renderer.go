package printing

import "github.com/labelprint/backend/internal/domain/labeling"

// LabelRenderer picks the raster or vector label renderer by artifact kind
type LabelRenderer struct {
	raster *RasterLabelRenderer
	vector *VectorLabelRenderer
}

// NewLabelRenderer creates the label renderer
func NewLabelRenderer(raster *RasterLabelRenderer, vector *VectorLabelRenderer) *LabelRenderer {
	return &LabelRenderer{raster: raster, vector: vector}
}

// Render draws the label as a PNG for raster spoolers or a PDF otherwise
func (r *LabelRenderer) Render(kind ArtifactKind, spec LabelSpec, content LabelContent) (*Artifact, error) {
	if kind == ArtifactPNG {
		artifact, _, err := r.raster.RenderPNG(spec, content)
		return artifact, err
	}
	artifact, _, err := r.vector.Render(spec, content)
	return artifact, err
}

// RenderDocument draws the production sheet and drops the layout report
func (r *SheetRenderer) RenderDocument(rec *labeling.ProductionSheetRecord) (*Artifact, error) {
	artifact, _, err := r.Render(rec)
	return artifact, err
}
