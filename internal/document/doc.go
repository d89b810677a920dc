/*
Package document assembles staged frames into a PDF.

Each staged frame becomes one page. Pages are 297mm wide with a height that
keeps the frame's aspect ratio, and the frame fills the page. Pages are
landscape for wide frames only: a frame taller than it is wide (a phone
recording, say) gets a portrait page of the same 297mm width, rather than a
landscape page that would have to distort or letterbox it. The frame's
timestamp (frame index / fps, as HH:MM:SS) is printed at (5mm, 5mm) in 12pt
Helvetica.

# Overlay color

The text color is picked from the frame itself: the mean Rec.601 luminance of
the 60x15 pixel rectangle at (5,5) decides between white text (mean below 64)
and black text. This is a plain threshold, not a contrast ratio, so mid-gray
corners get black text.

	a := document.NewAssembler(document.DefaultOptions())
	doc, err := a.Assemble(ctx, store, fps)
	if err != nil {
	    return err
	}
	os.WriteFile("slides.pdf", doc.Data, 0o644)
*/
package document
