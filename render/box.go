package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/annolab/go-inferlabel/postprocess/result"
)

// boxLabel defines where a detection label should be rendered on the
// source image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// boxRect converts a normalized bounding box to pixel coordinates on
// the image
func boxRect(box result.Box, img *gocv.Mat) image.Rectangle {

	w := float32(img.Cols())
	h := float32(img.Rows())

	return image.Rect(
		int(box.X*w), int(box.Y*h),
		int((box.X+box.W)*w), int((box.Y+box.H)*h),
	)
}

// DetectionBoxes renders the bounding boxes and labels of the detections
// onto the image
func DetectionBoxes(img *gocv.Mat, dets result.Detections, font Font,
	lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, det := range dets.Detections {

		useClr := classColor(det.Class)
		rect := boxRect(det.BoundingBox, img)

		// draw rectangle around detected object
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s %.2f", det.Label, det.Confidence)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		centerX := rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)

		labelPosition := image.Pt(centerX-textSize.X/2, rect.Min.Y-font.BottomPad)

		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			rect.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, rect.Min.Y)

		boxLabels = append(boxLabels, boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		})
	}

	// draw all box labels last so they are the top most layer on the image
	for _, box := range boxLabels {
		gocv.Rectangle(img, box.rect, box.clr, -1)

		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// InstanceMasks renders the cropped instance masks of the detections as a
// transparent overlay on the image
func InstanceMasks(img *gocv.Mat, dets result.Detections, alpha float32) {

	// manipulating pixels through CGO one at a time is too slow, so copy
	// the image bytes out and blend directly
	imgData := img.ToBytes()
	width := img.Cols()
	height := img.Rows()

	for i, det := range dets.Detections {

		if det.Mask == nil {
			continue
		}

		clr := classColor(i)
		rect := boxRect(det.BoundingBox, img)

		for y := 0; y < det.Mask.Height; y++ {
			for x := 0; x < det.Mask.Width; x++ {

				if !det.Mask.At(y, x) {
					continue
				}

				px := rect.Min.X + x
				py := rect.Min.Y + y

				if px < 0 || py < 0 || px >= width || py >= height {
					continue
				}

				blendPixel(imgData, (py*width+px)*3, clr, alpha)
			}
		}
	}

	tmpImg, _ := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)
	defer tmpImg.Close()
	tmpImg.CopyTo(img)
}

// SegmentationMask renders a whole frame class index mask as a transparent
// overlay on the image.  Class zero is treated as background and left
// untouched.
func SegmentationMask(img *gocv.Mat, seg result.Segmentation, alpha float32) {

	imgData := img.ToBytes()
	width := img.Cols()
	height := img.Rows()

	for y := 0; y < seg.Height && y < height; y++ {
		for x := 0; x < seg.Width && x < width; x++ {

			class := seg.At(y, x)

			if class == 0 {
				continue
			}

			blendPixel(imgData, (y*width+x)*3, classColor(class), alpha)
		}
	}

	tmpImg, _ := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)
	defer tmpImg.Close()
	tmpImg.CopyTo(img)
}

// blendPixel alpha blends a color into the BGR pixel at the given byte
// position
func blendPixel(data []byte, pos int, clr color.RGBA, alpha float32) {

	b, g, r := data[pos+0], data[pos+1], data[pos+2]

	data[pos+0] = uint8(float32(b)*(1-alpha) + float32(clr.B)*alpha)
	data[pos+1] = uint8(float32(g)*(1-alpha) + float32(clr.G)*alpha)
	data[pos+2] = uint8(float32(r)*(1-alpha) + float32(clr.R)*alpha)
}
