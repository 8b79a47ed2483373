package scoring

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/medvisionlab/chestray/internal/domain/scoring"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessShape(t *testing.T) {
	data := encodePNG(t, 640, 480, color.Gray{Y: 128})

	tensor, err := Preprocess(data)

	require.NoError(t, err)
	assert.Len(t, tensor, 3*InputSize*InputSize)
}

func TestPreprocessNormalization(t *testing.T) {
	// A pure white image maps every pixel to (1 - mean) / std per channel.
	data := encodePNG(t, 10, 10, color.White)

	tensor, err := Preprocess(data)
	require.NoError(t, err)

	const plane = InputSize * InputSize
	for c := 0; c < 3; c++ {
		want := (1.0 - channelMean[c]) / channelStd[c]
		assert.InDelta(t, want, float64(tensor[c*plane]), 0.05)
		assert.InDelta(t, want, float64(tensor[c*plane+plane-1]), 0.05)
	}
}

func TestPreprocessDeterministic(t *testing.T) {
	data := encodePNG(t, 64, 48, color.Gray{Y: 77})

	a, err := Preprocess(data)
	require.NoError(t, err)
	b, err := Preprocess(data)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := Preprocess([]byte("this is not an image"))
	assert.ErrorIs(t, err, domain.ErrDecode)

	_, err = Preprocess(nil)
	assert.ErrorIs(t, err, domain.ErrDecode)
}
