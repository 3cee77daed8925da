package overlay

import "image"

// ColorAdjust washes the base raster out before overlays are drawn, so lines
// and labels stand out on busy map styles. Factors of 1 leave the respective
// property untouched; saturation and contrast blend toward grey, brightness
// scales the channels.
type ColorAdjust struct {
	Saturation float64
	Contrast   float64
	Brightness float64
}

// Apply adjusts the image in place: saturation, then contrast, then
// brightness. Alpha is preserved.
func (a *ColorAdjust) Apply(img *image.RGBA) {
	if a == nil {
		return
	}

	if a.Saturation != 0 && a.Saturation != 1 {
		for i := 0; i < len(img.Pix); i += 4 {
			r, g, b := float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])
			grey := luminance(r, g, b)
			img.Pix[i] = clampChannel(grey + a.Saturation*(r-grey))
			img.Pix[i+1] = clampChannel(grey + a.Saturation*(g-grey))
			img.Pix[i+2] = clampChannel(grey + a.Saturation*(b-grey))
		}
	}

	if a.Contrast != 0 && a.Contrast != 1 {
		// Contrast pivots on the mean luminance of the whole image.
		var sum float64
		count := len(img.Pix) / 4
		for i := 0; i < len(img.Pix); i += 4 {
			sum += luminance(float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2]))
		}
		mean := sum / float64(count)

		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = clampChannel(mean + a.Contrast*(float64(img.Pix[i])-mean))
			img.Pix[i+1] = clampChannel(mean + a.Contrast*(float64(img.Pix[i+1])-mean))
			img.Pix[i+2] = clampChannel(mean + a.Contrast*(float64(img.Pix[i+2])-mean))
		}
	}

	if a.Brightness != 0 && a.Brightness != 1 {
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = clampChannel(a.Brightness * float64(img.Pix[i]))
			img.Pix[i+1] = clampChannel(a.Brightness * float64(img.Pix[i+1]))
			img.Pix[i+2] = clampChannel(a.Brightness * float64(img.Pix[i+2]))
		}
	}
}

func luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

func clampChannel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
