package speech

// Frames describes the shared analysis grid. Window t covers samples
// [t*Hop, t*Hop+Size); positions at or past Length read as zero, so every
// window has the same size and every analyzer sees the same frame count.
type Frames struct {
	Size       int
	Hop        int
	Count      int
	Length     int
	SampleRate int
}

// Segment builds the frame grid for sig. The last frame starts before the
// end of the signal, giving ceil(len/hop) frames.
func Segment(sig Signal, size, hop int) Frames {
	length := len(sig.Samples)
	count := 0
	if hop > 0 && length > 0 {
		count = (length + hop - 1) / hop
	}
	return Frames{
		Size:       size,
		Hop:        hop,
		Count:      count,
		Length:     length,
		SampleRate: sig.SampleRate,
	}
}

// Bounds returns the real (unpadded) sample range of frame t.
func (f Frames) Bounds(t int) (start, end int) {
	start = t * f.Hop
	end = start + f.Size
	if start > f.Length {
		start = f.Length
	}
	if end > f.Length {
		end = f.Length
	}
	return start, end
}

// Fill copies frame t into buf, zero-padding past the end of samples.
// buf must have length f.Size.
func (f Frames) Fill(samples []float64, t int, buf []float64) {
	start, end := f.Bounds(t)
	n := copy(buf, samples[start:end])
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
}

// Time returns the start time of frame t in seconds.
func (f Frames) Time(t int) float64 {
	return float64(t*f.Hop) / float64(f.SampleRate)
}

func (f Frames) PerSecond() float64 {
	return float64(f.SampleRate) / float64(f.Hop)
}
