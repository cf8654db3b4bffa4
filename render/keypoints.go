package render

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/annolab/go-inferlabel/postprocess/result"
)

// toPixel converts a normalized point to pixel coordinates on the image
func toPixel(p result.Point, img *gocv.Mat) image.Point {
	return image.Pt(
		int(p.X*float32(img.Cols())),
		int(p.Y*float32(img.Rows())),
	)
}

// Keypoints renders the keypoints of each instance as filled circles
func Keypoints(img *gocv.Mat, keypoints []result.Keypoint, radius int) {

	for i, kp := range keypoints {

		clr := classColor(i)

		for _, pt := range kp.Points {
			gocv.Circle(img, toPixel(pt, img), radius, clr, -1)
		}
	}
}

// Polylines renders each polyline's point sequences as connected line
// segments, closing them when the polyline is closed
func Polylines(img *gocv.Mat, polylines []result.Polyline, lineThickness int) {

	for i, poly := range polylines {

		clr := classColor(i)

		for _, seq := range poly.Points {

			if len(seq) < 2 {
				continue
			}

			for j := 0; j < len(seq)-1; j++ {
				gocv.Line(img, toPixel(seq[j], img), toPixel(seq[j+1], img),
					clr, lineThickness)
			}

			if poly.Closed {
				gocv.Line(img, toPixel(seq[len(seq)-1], img), toPixel(seq[0], img),
					clr, lineThickness)
			}
		}
	}
}
