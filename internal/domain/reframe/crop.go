// Package reframe computes source-video crop rectangles for vertical
// reframing: zoom and pan into a sub-region while preserving the output
// aspect ratio. The results feed ffmpeg crop filters directly, so they must
// be pixel-exact.
package reframe

// Crop is a rectangle in source pixels, guaranteed to lie inside the source
// frame.
type Crop struct {
	X int
	Y int
	W int
	H int
}

// ComputeCrop returns the crop for the given zoom and pan.
//
// Zoom below 1 clamps to 1 ("cover" fill). Pan values are percentages
// (-100..100) of the maximum shift available at the current zoom: the
// distance from the centered crop to the source edge.
func ComputeCrop(srcW, srcH, outW, outH int, zoom, panXPct, panYPct float64) Crop {
	if zoom < 1 {
		zoom = 1
	}
	sectionAspect := float64(outW) / float64(outH)

	// Largest out-aspect rectangle fully inside the source, centered.
	var baseW, baseH float64
	if float64(srcW)/float64(srcH) >= sectionAspect {
		baseH = float64(srcH)
		baseW = baseH * sectionAspect
	} else {
		baseW = float64(srcW)
		baseH = baseW / sectionAspect
	}

	cropW := baseW / zoom
	cropH := baseH / zoom

	maxPanX := (float64(srcW) - cropW) / 2
	maxPanY := (float64(srcH) - cropH) / 2

	centerX := float64(srcW)/2 + panXPct/100*maxPanX
	centerY := float64(srcH)/2 + panYPct/100*maxPanY

	x := centerX - cropW/2
	y := centerY - cropH/2

	x = clamp(x, 0, float64(srcW)-cropW)
	y = clamp(y, 0, float64(srcH)-cropH)

	return Crop{X: int(x), Y: int(y), W: int(cropW), H: int(cropH)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
