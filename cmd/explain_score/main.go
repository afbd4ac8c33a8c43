package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"speech-coach/audio"
	"speech-coach/config"
	"speech-coach/speech"
)

// Explains where every point of the delivery score came from.
func main() {
	configPath := flag.String("config", "", "analysis config file (yaml)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: explain_score [-config file] <audio-file>")
	}
	testFile := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	sig, err := audio.Load(ctx, testFile, audio.DefaultSampleRate)
	if err != nil {
		log.Fatalf("Failed to load audio: %v", err)
	}

	analysis, err := speech.Analyze(ctx, sig, cfg)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	m := analysis.Metrics

	fmt.Printf("=== Explaining Score for: %s ===\n\n", filepath.Base(testFile))

	fmt.Println("Signal:")
	fmt.Printf("   duration %.2fs, %d frames (%d/%d samples)\n", m.TotalDuration, m.FrameCount, cfg.FrameSize, cfg.HopSize)
	fmt.Printf("   voiced frames %d", m.VoicedFrames)
	if m.MeanPitchHz != nil {
		fmt.Printf(", mean pitch %.1f Hz", *m.MeanPitchHz)
	}
	fmt.Println()
	fmt.Printf("   %d onsets, %d pauses\n", m.OnsetCount, m.PauseCount)
	for i, p := range m.Pauses {
		fmt.Printf("     pause %d: %.3fs - %.3fs (%.3fs)\n", i+1, p.Start, p.End, p.Duration)
	}

	fmt.Println("\nCriteria (score = weight * max(0, 1 - |value - ideal| / span)):")
	for i, c := range analysis.Scores.Criteria {
		crit := cfg.Criteria[i]
		if c.Value == nil {
			fmt.Printf("   %-22s undefined                          -> %5.2f / %5.1f\n", c.Metric, c.Score, c.Weight)
			continue
		}
		fmt.Printf("   %-22s value %9.4f  ideal %7.3f  span %7.3f -> %5.2f / %5.1f\n",
			c.Metric, *c.Value, crit.Ideal, crit.Span, c.Score, c.Weight)
	}

	s := analysis.Scores
	fmt.Printf("\nHeadings: pitch %.2f  volume %.2f  rate %.2f  pauses %.2f  ratio %.2f\n",
		s.PitchScore, s.VolumeScore, s.RateScore, s.PauseScore, s.RatioScore)
	fmt.Printf("Overall Score: %d/100\n", s.Total)

	fmt.Println("\nNarrative bands:")
	for _, st := range analysis.Report.Statements {
		value := "undefined"
		if st.Value != nil {
			value = fmt.Sprintf("%.4f", *st.Value)
		}
		fmt.Printf("   %-22s %-12s -> %-20s [%s]\n", st.Metric, value, st.Band, st.Kind)
	}
}
