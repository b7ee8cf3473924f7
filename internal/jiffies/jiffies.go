// Package jiffies defines the pipeline's time unit and conversions to and
// from samples, milliseconds, and seconds.
package jiffies

// PerSecond is the number of jiffies in one second. It is divisible by
// every supported sample rate so that one sample is always an exact
// integer number of jiffies.
//
// 56448000 = 2^10 * 3^2 * 5^3 * 7^2, chosen (as in the original) to be
// a multiple of every rate in SupportedRates.
const PerSecond = 56448000

// SupportedRates lists every sample rate the pipeline accepts.
var SupportedRates = []uint{
	7350, 8000, 11025, 12000, 16000, 22050, 24000,
	32000, 44100, 48000, 88200, 96000, 176400, 192000,
}

// PerSample returns the number of jiffies occupied by a single sample at
// the given rate. Panics on an unsupported rate, mirroring the pipeline's
// "misconfiguration is fatal" error policy.
func PerSample(sampleRate uint) uint64 {
	if sampleRate == 0 || PerSecond%uint64(sampleRate) != 0 {
		panic("jiffies: unsupported sample rate")
	}
	return PerSecond / uint64(sampleRate)
}

// FromSamples converts a sample count at sampleRate into jiffies.
func FromSamples(samples uint64, sampleRate uint) uint64 {
	return samples * PerSample(sampleRate)
}

// ToSamples converts a jiffy count into a sample count at sampleRate.
// The conversion is exact; a non-zero remainder indicates a caller bug
// (a jiffy span that doesn't land on a sample boundary).
func ToSamples(j uint64, sampleRate uint) uint64 {
	per := PerSample(sampleRate)
	return j / per
}

// FromMs converts milliseconds to jiffies.
func FromMs(ms uint64) uint64 {
	return ms * (PerSecond / 1000)
}

// FromSeconds converts a (possibly fractional) second count to jiffies.
func FromSeconds(s float64) uint64 {
	return uint64(s * float64(PerSecond))
}

// ToSeconds converts jiffies to seconds.
func ToSeconds(j uint64) float64 {
	return float64(j) / float64(PerSecond)
}
