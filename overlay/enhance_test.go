package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func halfToneImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				img.SetRGBA(x, y, color.RGBA{0x20, 0x20, 0x20, 0xff})
			} else {
				img.SetRGBA(x, y, color.RGBA{0xe0, 0xe0, 0xe0, 0xff})
			}
		}
	}
	return img
}

func Test_colorAdjustWashesOut(t *testing.T) {
	img := halfToneImage()
	adjust := &ColorAdjust{Saturation: 1.0, Contrast: 0.4, Brightness: 1.15}
	adjust.Apply(img)

	// Contrast below one pulls both halves toward the mean, brightness above
	// one lifts them; the dark half ends up lighter, the gap shrinks.
	dark := img.RGBAAt(0, 0)
	light := img.RGBAAt(3, 0)
	assert.Greater(t, dark.R, uint8(0x20))
	assert.Less(t, light.R-dark.R, uint8(0xe0-0x20))

	// Alpha survives.
	assert.Equal(t, uint8(0xff), dark.A)
	assert.Equal(t, uint8(0xff), light.A)
}

func Test_colorAdjustGreyStaysGrey(t *testing.T) {
	img := halfToneImage()
	(&ColorAdjust{Saturation: 0.5, Contrast: 0.4, Brightness: 1.15}).Apply(img)

	// Desaturating an achromatic image must not introduce a color cast.
	c := img.RGBAAt(0, 0)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}

func Test_colorAdjustNilNoop(t *testing.T) {
	img := halfToneImage()
	want := append([]uint8(nil), img.Pix...)

	var adjust *ColorAdjust
	adjust.Apply(img)
	assert.Equal(t, want, img.Pix)
}

func Test_stamenStyleCarriesColorAdjust(t *testing.T) {
	s := StyleFor("stamen")
	require.NotNil(t, s.ColorAdjust)
	assert.Equal(t, 0.4, s.ColorAdjust.Contrast)
	assert.Equal(t, 1.15, s.ColorAdjust.Brightness)

	assert.Nil(t, StyleFor("default").ColorAdjust)
}
