package speech

import "math"

// PauseSegment is one silent run that lasted at least the minimum pause
// duration. Times are in seconds from the start of the signal.
type PauseSegment struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// PauseSet is the ordered, non-overlapping list of pauses in a signal.
type PauseSet struct {
	Segments  []PauseSegment
	Threshold float64
	MinFrames int
}

func (p PauseSet) Count() int {
	return len(p.Segments)
}

func (p PauseSet) TotalDuration() float64 {
	var total float64
	for _, seg := range p.Segments {
		total += seg.Duration
	}
	return total
}

// SegmentPauses classifies every envelope frame as speech or silence against
// silenceRatio times the envelope maximum and returns the silent runs of at
// least minPause seconds. A zero minPause keeps every silent run.
func SegmentPauses(envelope []float64, framesPerSecond, silenceRatio, minPause float64) PauseSet {
	silent, threshold := classifySilence(envelope, silenceRatio)
	minFrames := minPauseFrames(minPause, framesPerSecond)

	return PauseSet{
		Segments:  runLengthPauses(silent, framesPerSecond, minFrames),
		Threshold: threshold,
		MinFrames: minFrames,
	}
}

// classifySilence marks frames below the adaptive threshold. An envelope
// whose maximum is zero carries no speech at all, so every frame is silent.
func classifySilence(envelope []float64, silenceRatio float64) ([]bool, float64) {
	var peak float64
	for _, v := range envelope {
		if v > peak {
			peak = v
		}
	}
	threshold := silenceRatio * peak

	silent := make([]bool, len(envelope))
	for i, v := range envelope {
		silent[i] = peak == 0 || v < threshold
	}
	return silent, threshold
}

// minPauseFrames returns the smallest run length whose duration, computed
// the way runLengthPauses computes it, is at least minPause.
func minPauseFrames(minPause, framesPerSecond float64) int {
	frames := int(math.Ceil(minPause * framesPerSecond))
	if frames < 1 {
		frames = 1
	}
	for frames > 1 && float64(frames-1)/framesPerSecond >= minPause {
		frames--
	}
	for float64(frames)/framesPerSecond < minPause {
		frames++
	}
	return frames
}

// runLengthPauses scans silent once. The end of the slice closes an open run
// the same way a speech frame does.
func runLengthPauses(silent []bool, framesPerSecond float64, minFrames int) []PauseSegment {
	var segments []PauseSegment
	run := 0

	for i := 0; i <= len(silent); i++ {
		if i < len(silent) && silent[i] {
			run++
			continue
		}
		if run >= minFrames && run > 0 {
			start := float64(i-run) / framesPerSecond
			duration := float64(run) / framesPerSecond
			segments = append(segments, PauseSegment{
				Start:    start,
				End:      start + duration,
				Duration: duration,
			})
		}
		run = 0
	}

	return segments
}
