// Package suggest proposes an initial selection for an image, either from a
// vision model served by Ollama or from a local saliency estimate.
package suggest

import (
	"context"
	"errors"
	"image"

	"github.com/menta2k/image-selector/pkg/types"
)

// ErrNoSubject is returned when no subject worth selecting was found
var ErrNoSubject = errors.New("suggest: no subject found")

// Suggester proposes a normalized box around the main subject of an image
type Suggester interface {
	Suggest(ctx context.Context, img image.Image) (types.Box, error)
}

// Fixed always suggests the same box
type Fixed types.Box

// Suggest returns the fixed box
func (f Fixed) Suggest(_ context.Context, _ image.Image) (types.Box, error) {
	b := types.Box(f).Clamp()
	if b.W == 0 || b.H == 0 {
		return types.Box{}, ErrNoSubject
	}
	return b, nil
}
