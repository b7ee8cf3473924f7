//go:build portaudio

package main

import "github.com/arung-agamani/denpa-pipeline/internal/animator"

// newAnimator builds the real PortAudio-backed animator when the
// binary is built with `-tags portaudio`.
func newAnimator() (animator.PipelineAnimator, func() error, error) {
	a, err := animator.NewPortAudio()
	if err != nil {
		return nil, nil, err
	}
	return a, a.Close, nil
}
