// Package printing provides infrastructure for rendering HTML documents to
// PDF, used for the clearance document cost summary.
//
// This package contains:
// - PDFRenderer interface for rendering HTML to PDF
// - ChromedpRenderer implementation using the Chrome DevTools Protocol
// - WkhtmltopdfRenderer implementation using the wkhtmltopdf command-line tool
// - TemplateEngine for binding document data to HTML templates
//
// Example usage:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:        "<html>...</html>",
//	    PaperSize:   PaperSizeLetter,
//	    Orientation: OrientationPortrait,
//	    Margins:     DefaultMargins(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Generated PDF: %d bytes\n", len(result.PDFData))
package printing
