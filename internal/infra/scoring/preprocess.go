package scoring

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	domain "github.com/medvisionlab/chestray/internal/domain/scoring"
)

// InputSize is the fixed spatial resolution the classifier was trained on.
const InputSize = 224

// Per-channel normalization constants of the pretrained backbone.
var (
	channelMean = [3]float64{0.485, 0.456, 0.406}
	channelStd  = [3]float64{0.229, 0.224, 0.225}
)

// Preprocess decodes raw image bytes of any supported format and produces the
// flat CHW float32 tensor the classifier expects: RGB, 224x224, intensities
// scaled to [0,1] then normalized per channel. The transform is deterministic;
// the same bytes always yield the same tensor.
func Preprocess(data []byte) ([]float32, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	// Resize to the exact model input, ignoring aspect ratio, then clone to
	// NRGBA so pixel access is uniform regardless of the source color model.
	// Grayscale X-rays end up with three identical channels, which matches
	// an RGB conversion before normalization.
	resized := imaging.Resize(img, InputSize, InputSize, imaging.Lanczos)
	rgba := imaging.Clone(resized)

	const plane = InputSize * InputSize
	tensor := make([]float32, 3*plane)
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			off := rgba.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := float64(rgba.Pix[off+c]) / 255.0
				tensor[c*plane+y*InputSize+x] = float32((v - channelMean[c]) / channelStd[c])
			}
		}
	}
	return tensor, nil
}
