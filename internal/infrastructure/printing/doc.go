// Package printing renders labels and production sheets into printable
// artifacts.
//
// This package contains:
// - RasterLabelRenderer, a 300 DPI PNG label drawn with x/image fonts
// - VectorLabelRenderer, a single-page PDF label sized to the stock
// - SheetRenderer, the A4 production sheet with a fixed row grid
// - Code128Encoder for the weight barcode
// - ScratchStore, the scratch directory handed to the spooler
//
// All geometry derives from the physical stock size through the constants in
// units.go, so a render does not depend on any screen or device.
//
// Example usage:
//
//	renderer := NewVectorLabelRenderer(VectorLabelRendererConfig{
//	    Barcode: NewCode128Encoder(),
//	    Logger:  logger,
//	})
//	artifact, _, err := renderer.Render(LabelSpecFrom(cfg), LabelContentFrom(rec))
//	if err != nil {
//	    return err
//	}
//	path, err := store.Save(ctx, artifact)
package printing
