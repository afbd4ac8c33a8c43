package main

import (
	"flag"
	"log"
	"time"

	"speech-coach/audio"
	"speech-coach/speech"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Writes the burst/silence test recording: a tone for 4s, 1.5s of silence,
// the tone for another 4s, then 0.5s of silence.
func main() {
	out := flag.String("o", "burst_fixture.wav", "output WAV path")
	freq := flag.Float64("freq", 150, "tone frequency in Hz")
	amplitude := flag.Float64("amp", 0.5, "tone amplitude in (0, 1]")
	flag.Parse()

	rate := beep.SampleRate(audio.DefaultSampleRate)

	tone := func(d time.Duration) beep.Streamer {
		sine, err := generators.SineTone(rate, *freq)
		if err != nil {
			log.Fatalf("Failed to create tone: %v", err)
		}
		return &effects.Gain{Streamer: beep.Take(rate.N(d), sine), Gain: *amplitude - 1}
	}

	fixture := beep.Seq(
		tone(4*time.Second),
		generators.Silence(rate.N(1500*time.Millisecond)),
		tone(4*time.Second),
		generators.Silence(rate.N(500*time.Millisecond)),
	)

	samples, err := audio.Collect(fixture)
	if err != nil {
		log.Fatalf("Failed to render fixture: %v", err)
	}

	sig, err := speech.NewSignal(samples, int(rate))
	if err != nil {
		log.Fatalf("Invalid fixture: %v", err)
	}

	if err := audio.WriteWAV(*out, sig); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("Wrote %s (%.2fs at %d Hz)", *out, sig.Duration(), sig.SampleRate)
}
