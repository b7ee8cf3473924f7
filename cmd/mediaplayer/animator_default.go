//go:build !portaudio

package main

import "github.com/arung-agamani/denpa-pipeline/internal/animator"

// newAnimator builds the default animator: a Null sink that logs each
// message instead of rendering it, used whenever the binary is built
// without the portaudio tag (e.g. CI, containers with no sound
// device).
func newAnimator() (animator.PipelineAnimator, func() error, error) {
	return animator.NewNull(), func() error { return nil }, nil
}
