package render

// Window returns the half open range [start, end) of frame indices drawn at
// position p.  The window is centred on p until it reaches the end of the
// video, there it narrows instead of shifting back, so the last positions
// draw fewer frames.
func Window(p, frameCount, windowSize int) (start, end int) {

	half := windowSize / 2
	start = max(0, p-half)
	end = min(frameCount, start+windowSize)

	if end < start {
		end = start
	}

	return start, end
}
