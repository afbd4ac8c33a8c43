package speech

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrogram holds one Hann-windowed magnitude spectrum per frame. It is
// computed once and read concurrently by the pitch, onset and spectral
// analyzers, none of which may modify it.
type Spectrogram struct {
	Magnitudes [][]float64
	FFTSize    int
	BinHz      float64
}

// ComputeSpectrogram transforms every frame of sig. Frames shorter than the
// FFT size are zero-padded up to the next power of two.
func ComputeSpectrogram(sig Signal, frames Frames) Spectrogram {
	fftSize := nextPowerOfTwo(frames.Size)
	fft := fourier.NewFFT(fftSize)
	window := hannWindow(frames.Size)

	buf := make([]float64, fftSize)
	coeffs := make([]complex128, fftSize/2+1)
	magnitudes := make([][]float64, frames.Count)

	for t := 0; t < frames.Count; t++ {
		frames.Fill(sig.Samples, t, buf[:frames.Size])
		for i, w := range window {
			buf[i] *= w
		}
		for i := frames.Size; i < fftSize; i++ {
			buf[i] = 0
		}

		coeffs = fft.Coefficients(coeffs, buf)
		row := make([]float64, len(coeffs))
		for k, c := range coeffs {
			row[k] = cmplx.Abs(c)
		}
		magnitudes[t] = row
	}

	return Spectrogram{
		Magnitudes: magnitudes,
		FFTSize:    fftSize,
		BinHz:      float64(sig.SampleRate) / float64(fftSize),
	}
}

func (s Spectrogram) Frequency(bin int) float64 {
	return float64(bin) * s.BinHz
}

func hannWindow(n int) []float64 {
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return window
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
