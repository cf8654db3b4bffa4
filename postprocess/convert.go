package postprocess

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
	"gocv.io/x/gocv"

	"github.com/annolab/go-inferlabel/postprocess/result"
)

// PolylineParams configures the conversion of instance masks into polylines
type PolylineParams struct {
	// Tolerance is the contour simplification tolerance in pixels.  Zero
	// keeps the raw traced contour.
	Tolerance float64
	// Padding expands the traced outline outwards by the given number of
	// pixels using a polygon offset
	Padding float64
}

// DetectionsToPolylines converts the instance masks of the given detections
// into closed filled polylines in normalized coordinates.  Detections without
// a mask are skipped.
func DetectionsToPolylines(dets result.Detections, frame result.FrameSize,
	p PolylineParams) []result.Polyline {

	var polys []result.Polyline

	for _, det := range dets.Detections {

		if det.Mask == nil || det.Mask.Width == 0 || det.Mask.Height == 0 {
			continue
		}

		// the mask lives in box cropped pixel space, shift contours back
		// to frame coordinates by the crop origin
		originX := roundPx(det.BoundingBox.X * float32(frame.Width))
		originY := roundPx(det.BoundingBox.Y * float32(frame.Height))

		seqs := traceMask(det.Mask, originX, originY, frame, p)

		if len(seqs) == 0 {
			continue
		}

		polys = append(polys, result.Polyline{
			Points:     seqs,
			Closed:     true,
			Filled:     true,
			Confidence: det.Confidence,
		})
	}

	return polys
}

// traceMask extracts the outlines of one binary mask as normalized point
// sequences
func traceMask(mask *result.Mask, originX, originY int,
	frame result.FrameSize, p PolylineParams) [][]result.Point {

	mat := gocv.NewMatWithSize(mask.Height, mask.Width, gocv.MatTypeCV8UC1)
	defer mat.Close()

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.At(y, x) {
				mat.SetUCharAt(y, x, 255)
			}
		}
	}

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var seqs [][]result.Point

	for i := 0; i < contours.Size(); i++ {

		contour := contours.At(i)

		if contour.Size() < 3 {
			continue
		}

		var pts []image.Point

		if p.Tolerance > 0 {
			approx := gocv.ApproxPolyDP(contour, p.Tolerance, true)
			pts = approx.ToPoints()
			approx.Close()
		} else {
			pts = contour.ToPoints()
		}

		if p.Padding > 0 {
			pts = offsetOutline(pts, p.Padding)
		}

		if len(pts) < 3 {
			continue
		}

		seq := make([]result.Point, 0, len(pts))

		for _, pt := range pts {
			seq = append(seq, result.NormalizePoint(
				float32(pt.X+originX), float32(pt.Y+originY), frame))
		}

		seqs = append(seqs, seq)
	}

	return seqs
}

// offsetOutline expands a closed outline outwards by the given distance
// using a round joined polygon offset
func offsetOutline(pts []image.Point, distance float64) []image.Point {

	var path clipper.Path

	for _, pt := range pts {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(pt.X),
			Y: clipper.CInt(pt.Y),
		})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(distance)

	var out []image.Point

	for _, sol := range solution {
		for _, pt := range sol {
			out = append(out, image.Point{X: int(pt.X), Y: int(pt.Y)})
		}
	}

	return out
}
