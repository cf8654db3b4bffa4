package preprocess

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"

	"github.com/annolab/go-inferlabel/tensor"
)

// roundDim rounds a scaled dimension to the nearest integer pixel, with ties
// rounding to even
func roundDim(v float64) int {
	return int(math.RoundToEven(v))
}

// scaleFrame resizes a frame to the given destination size using the
// resampling routine for its representation.  The input frame is released
// when a new one is produced.
func scaleFrame(f *Frame, destW, destH int, interp Interpolation) (*Frame, error) {

	if f.IsMat() {

		dst := gocv.NewMat()

		gocv.Resize(f.Mat(), &dst, image.Pt(destW, destH), 0, 0,
			interp.gocvFlag())

		f.Close()

		return NewMatFrame(dst), nil
	}

	scaled := scaleTensor(f.Tensor(), destW, destH, interp.scaler())

	return NewTensorFrame(scaled), nil
}

// scaleTensor resizes a CHW tensor channel by channel.  Each channel plane
// is mapped onto a 16 bit grayscale image, resampled with the x/image
// scaler, and mapped back through the same affine range.
func scaleTensor(t *tensor.Tensor, destW, destH int, scaler draw.Scaler) *tensor.Tensor {

	c := t.Channels()
	srcH := t.Height()
	srcW := t.Width()

	out := tensor.New(tensor.NCHW, c, destH, destW)

	srcImg := image.NewGray16(image.Rect(0, 0, srcW, srcH))
	dstImg := image.NewGray16(image.Rect(0, 0, destW, destH))

	for ch := 0; ch < c; ch++ {

		plane := t.Data[ch*srcH*srcW : (ch+1)*srcH*srcW]

		// affine map of the channel range onto the 16 bit sample space
		lo, hi := plane[0], plane[0]

		for _, v := range plane {

			if v < lo {
				lo = v
			}

			if v > hi {
				hi = v
			}
		}

		span := hi - lo

		if span == 0 {
			// constant plane, no resampling needed
			dstPlane := out.Data[ch*destH*destW : (ch+1)*destH*destW]

			for i := range dstPlane {
				dstPlane[i] = lo
			}

			continue
		}

		for y := 0; y < srcH; y++ {
			for x := 0; x < srcW; x++ {
				v := (plane[y*srcW+x] - lo) / span
				srcImg.SetGray16(x, y, imageGray16(v))
			}
		}

		scaler.Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)

		dstPlane := out.Data[ch*destH*destW : (ch+1)*destH*destW]

		for y := 0; y < destH; y++ {
			for x := 0; x < destW; x++ {
				g := dstImg.Gray16At(x, y).Y
				dstPlane[y*destW+x] = lo + span*float32(g)/65535.0
			}
		}
	}

	return out
}

// imageGray16 converts a [0, 1] sample to a 16 bit gray color
func imageGray16(v float32) color.Gray16 {

	if v <= 0 {
		return color.Gray16{}
	}

	if v >= 1 {
		return color.Gray16{Y: 65535}
	}

	return color.Gray16{Y: uint16(v*65535.0 + 0.5)}
}
