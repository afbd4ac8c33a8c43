package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"speech-coach/audio"
	"speech-coach/config"
	"speech-coach/speech"

	"github.com/google/go-cmp/cmp"
)

var checkedMetrics = []speech.Metric{
	speech.MetricPitchVariation,
	speech.MetricAverageVolume,
	speech.MetricSpeakingRate,
	speech.MetricPauseFrequency,
	speech.MetricPauseDurationRatio,
	speech.MetricSpeechRatio,
	speech.MetricSpectralCentroid,
	speech.MetricZeroCrossingRate,
}

// Runs the analysis several times on one file and reports any drift.
func main() {
	runs := flag.Int("n", 5, "number of runs")
	configPath := flag.String("config", "", "analysis config file (yaml)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: check_determinism [-n runs] [-config file] <audio-file>")
	}
	if *runs < 2 {
		log.Fatal("need at least 2 runs")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	analyzer, err := speech.NewAnalyzer(cfg)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx := context.Background()
	sig, err := audio.Load(ctx, flag.Arg(0), audio.DefaultSampleRate)
	if err != nil {
		log.Fatalf("Failed to load audio: %v", err)
	}

	var results []*speech.Analysis
	for i := 0; i < *runs; i++ {
		analysis, err := analyzer.Analyze(ctx, sig)
		if err != nil {
			log.Fatalf("Run %d failed: %v", i+1, err)
		}
		results = append(results, analysis)
		log.Printf("Run %d: total=%d pauses=%d rate=%.6f", i+1,
			analysis.Scores.Total, analysis.Metrics.PauseCount, analysis.Metrics.SpeakingRate)
	}

	fmt.Println("\n=== Determinism Check ===")
	identical := true
	maxDiff := 0.0

	for i := 1; i < len(results); i++ {
		for _, metric := range checkedMetrics {
			a, okA := results[0].Metrics.Value(metric)
			b, okB := results[i].Metrics.Value(metric)
			if okA != okB {
				identical = false
				fmt.Printf("%s defined in run 1 (%v) but not in run %d (%v)\n", metric, okA, i+1, okB)
				continue
			}
			diff := math.Abs(a - b)
			maxDiff = math.Max(maxDiff, diff)
		}

		if diff := cmp.Diff(results[0], results[i]); diff != "" {
			identical = false
			fmt.Printf("Run %d differs from run 1 (-run1 +run%d):\n%s\n", i+1, i+1, diff)
		}
	}

	fmt.Printf("Max metric difference: %e\n", maxDiff)
	if !identical {
		fmt.Println("Analysis is NOT deterministic")
		os.Exit(1)
	}
	fmt.Println("All runs produced identical analyses")
}
