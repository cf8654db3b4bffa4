package preprocess

// MinResize scales a frame, if necessary, so that both of its dimensions
// are at least the specified minimums.  Frames that already meet both
// minimums are returned unchanged.  When scaling is needed the frame is
// scaled isotropically by the smallest factor that brings both dimensions
// at or above their minimums, with target dimensions rounded to the nearest
// integer pixel.
type MinResize struct {
	minHeight int
	minWidth  int
	interp    Interpolation
}

// NewMinResize returns a MinResize applying the single minimum dimension to
// both the height and width
func NewMinResize(minDim int, interp Interpolation) *MinResize {
	return NewMinResizeHW(minDim, minDim, interp)
}

// NewMinResizeHW returns a MinResize with an explicit (minHeight, minWidth)
// pair
func NewMinResizeHW(minHeight, minWidth int, interp Interpolation) *MinResize {
	return &MinResize{
		minHeight: minHeight,
		minWidth:  minWidth,
		interp:    interp,
	}
}

// Apply resizes the frame when one of its dimensions is below the configured
// minimums
func (m *MinResize) Apply(f *Frame) (*Frame, error) {

	w, h := f.Size()

	if h >= m.minHeight && w >= m.minWidth {
		return f, nil
	}

	alpha := float64(m.minHeight) / float64(h)

	if a := float64(m.minWidth) / float64(w); a > alpha {
		alpha = a
	}

	return scaleFrame(f, roundDim(alpha*float64(w)), roundDim(alpha*float64(h)),
		m.interp)
}
