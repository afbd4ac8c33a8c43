package coach

import (
	"errors"
	"fmt"
	"strings"
)

// BuildPrompt renders the analysis, transcript and job description into the
// user message of a critique request.
func BuildPrompt(req Request) (string, error) {
	if req.Analysis == nil {
		return "", errors.New("critique request has no analysis")
	}

	m := req.Analysis.Metrics
	s := req.Analysis.Scores

	var b strings.Builder

	fmt.Fprintf(&b, "Delivery score: %d/100\n", s.Total)
	fmt.Fprintf(&b, "Sub-scores: pitch %.1f, volume %.1f, rate %.1f, pauses %.1f, speech ratio %.1f\n\n",
		s.PitchScore, s.VolumeScore, s.RateScore, s.PauseScore, s.RatioScore)

	b.WriteString("Metrics:\n")
	fmt.Fprintf(&b, "- duration: %.1f s\n", m.TotalDuration)
	if m.PitchVariation != nil {
		fmt.Fprintf(&b, "- pitch variation: %.3f (normalized variance)\n", *m.PitchVariation)
	} else {
		b.WriteString("- pitch variation: not detected\n")
	}
	fmt.Fprintf(&b, "- average volume: %.3f\n", m.AverageVolume)
	fmt.Fprintf(&b, "- speaking rate: %.2f onsets per second\n", m.SpeakingRate)
	fmt.Fprintf(&b, "- pauses: %d totalling %.1f s (%.2f per minute)\n", m.PauseCount, m.TotalPauseDuration, m.PauseFrequency)
	fmt.Fprintf(&b, "- speech ratio: %.2f\n", m.SpeechRatio)

	if len(req.Analysis.Report.Statements) > 0 {
		b.WriteString("\nRule-based feedback:\n")
		for _, st := range req.Analysis.Report.Statements {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", st.Kind, st.Band, st.Message)
		}
	}

	if t := strings.TrimSpace(req.Transcript); t != "" {
		fmt.Fprintf(&b, "\nTranscript:\n%s\n", t)
	}
	if jd := strings.TrimSpace(req.JobDescription); jd != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", jd)
	}

	return b.String(), nil
}
