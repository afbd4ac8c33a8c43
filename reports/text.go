package reports

import (
	"fmt"
	"io"
	"strings"

	"speech-coach/speech"
)

// WriteText prints the human-readable summary of an analysis: the overall
// score line, the category sub-scores, and one line per narrative statement.
func WriteText(w io.Writer, analysis *speech.Analysis) error {
	var b strings.Builder

	scores := analysis.Scores
	metrics := analysis.Metrics

	fmt.Fprintf(&b, "Overall Score: %d/100\n", scores.Total)
	fmt.Fprintf(&b, "  pitch %.1f  volume %.1f  rate %.1f  pauses %.1f  speech ratio %.1f\n",
		scores.PitchScore, scores.VolumeScore, scores.RateScore, scores.PauseScore, scores.RatioScore)
	fmt.Fprintf(&b, "Duration: %.2fs, %d pauses (%.2fs), %.2f onsets/s\n",
		metrics.TotalDuration, metrics.PauseCount, metrics.TotalPauseDuration, metrics.SpeakingRate)

	if len(analysis.Report.Statements) > 0 {
		b.WriteString("\nFeedback:\n")
	}
	for _, st := range analysis.Report.Statements {
		fmt.Fprintf(&b, "  %s %s: %s\n", kindMarker(st.Kind), st.Band, st.Message)
	}

	if len(analysis.Report.Strengths) > 0 {
		fmt.Fprintf(&b, "\nStrengths: %s\n", strings.Join(analysis.Report.Strengths, ", "))
	}
	if len(analysis.Report.Improvements) > 0 {
		fmt.Fprintf(&b, "Improvements: %s\n", strings.Join(analysis.Report.Improvements, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func kindMarker(kind speech.Kind) string {
	switch kind {
	case speech.KindStrength:
		return "+"
	case speech.KindImprovement:
		return "-"
	default:
		return "*"
	}
}
