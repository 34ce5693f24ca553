package suggest

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-selector/pkg/types"
)

// SaliencyConfig holds configuration for the saliency suggester
type SaliencyConfig struct {
	// WorkSize is the long side the image is reduced to before analysis
	WorkSize       int
	ContrastWeight float64
	ColorWeight    float64
	// Threshold is the minimum mean saliency of the chosen window
	Threshold float64
	// WindowRatios are the window sizes tried, relative to the image
	WindowRatios []float64
}

// SaliencySuggester picks the window with the highest mean edge and
// brightness saliency
type SaliencySuggester struct {
	config SaliencyConfig
}

// NewSaliencySuggester creates a suggester with default configuration
func NewSaliencySuggester() *SaliencySuggester {
	return NewSaliencySuggesterWithConfig(SaliencyConfig{
		WorkSize:       128,
		ContrastWeight: 0.7,
		ColorWeight:    0.3,
		Threshold:      0.01,
		WindowRatios:   []float64{0.25, 0.33, 0.5, 0.66},
	})
}

// NewSaliencySuggesterWithConfig creates a suggester with custom configuration
func NewSaliencySuggesterWithConfig(config SaliencyConfig) *SaliencySuggester {
	if config.WorkSize < 8 {
		config.WorkSize = 128
	}
	if len(config.WindowRatios) == 0 {
		config.WindowRatios = []float64{0.5}
	}
	return &SaliencySuggester{config: config}
}

// Suggest returns the most salient window of img
func (s *SaliencySuggester) Suggest(ctx context.Context, img image.Image) (types.Box, error) {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return types.Box{}, ErrNoSubject
	}

	small := imaging.Fit(img, s.config.WorkSize, s.config.WorkSize, imaging.Box)
	sat := s.integral(s.saliencyMap(small))
	w, h := small.Bounds().Dx(), small.Bounds().Dy()

	best := -1.0
	var bestRect image.Rectangle
	for _, ratio := range s.config.WindowRatios {
		if err := ctx.Err(); err != nil {
			return types.Box{}, err
		}

		ww := int(math.Round(float64(w) * ratio))
		wh := int(math.Round(float64(h) * ratio))
		if ww < 2 || wh < 2 {
			continue
		}
		step := max(1, min(ww, wh)/8)

		for y := 0; y+wh <= h; y += step {
			for x := 0; x+ww <= w; x += step {
				score := sat.mean(x, y, ww, wh)
				if score > best {
					best = score
					bestRect = image.Rect(x, y, x+ww, y+wh)
				}
			}
		}
	}

	if best < s.config.Threshold || bestRect.Empty() {
		return types.Box{}, ErrNoSubject
	}

	fw, fh := float64(w), float64(h)
	return types.Box{
		X: float64(bestRect.Min.X) / fw,
		Y: float64(bestRect.Min.Y) / fh,
		W: float64(bestRect.Dx()) / fw,
		H: float64(bestRect.Dy()) / fh,
	}, nil
}

// saliencyMap combines the mean color difference to the 8 neighbours with
// the pixel brightness
func (s *SaliencySuggester) saliencyMap(img *image.NRGBA) [][]float64 {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	out := make([][]float64, h)
	for i := range out {
		out[i] = make([]float64, w)
	}

	at := func(x, y int) (float64, float64, float64) {
		c := img.NRGBAAt(x, y)
		return float64(c.R), float64(c.G), float64(c.B)
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			r1, g1, b1 := at(x, y)

			var edge float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					r2, g2, b2 := at(x+dx, y+dy)
					dr, dg, db := r1-r2, g1-g2, b1-b2
					edge += math.Sqrt(dr*dr + dg*dg + db*db)
				}
			}
			edge /= 8 * 255 * math.Sqrt(3)

			brightness := (r1 + g1 + b1) / (3 * 255)
			out[y][x] = s.config.ContrastWeight*edge + s.config.ColorWeight*brightness
		}
	}
	return out
}

// summedArea is an integral image over a saliency map
type summedArea [][]float64

func (s *SaliencySuggester) integral(m [][]float64) summedArea {
	h := len(m)
	w := 0
	if h > 0 {
		w = len(m[0])
	}
	sat := make(summedArea, h+1)
	for i := range sat {
		sat[i] = make([]float64, w+1)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sat[y+1][x+1] = m[y][x] + sat[y][x+1] + sat[y+1][x] - sat[y][x]
		}
	}
	return sat
}

func (sat summedArea) mean(x, y, w, h int) float64 {
	sum := sat[y+h][x+w] - sat[y][x+w] - sat[y+h][x] + sat[y][x]
	return sum / float64(w*h)
}
