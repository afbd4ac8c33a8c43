package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"speech-coach/models"
)

// Posts recordings to a running server the way the web client does and
// prints the returned scores.
func main() {
	dir := flag.String("dir", "recordings", "Directory containing WAV recordings to upload (ignored if -file is set)")
	file := flag.String("file", "", "Single WAV file to upload (overrides -dir)")
	endpoint := flag.String("url", "http://localhost:5000/api/analyze", "Analysis endpoint")
	transcript := flag.String("transcript", "", "Optional transcript file sent with every upload")
	coachFlag := flag.Bool("coach", false, "Request a written critique")
	delay := flag.Duration("delay", 2*time.Second, "Delay between uploads when using -dir")
	flag.Parse()

	files, err := resolveFiles(*file, *dir)
	if err != nil {
		log.Fatalf("failed to resolve files: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no WAV files found (file=%s dir=%s)", *file, *dir)
	}

	var transcriptText string
	if *transcript != "" {
		data, err := os.ReadFile(*transcript)
		if err != nil {
			log.Fatalf("failed to read transcript: %v", err)
		}
		transcriptText = string(data)
	}

	fmt.Printf("Uploading %d recording(s) to %s\n\n", len(files), *endpoint)
	for idx, path := range files {
		if err := uploadRecording(path, *endpoint, transcriptText, *coachFlag); err != nil {
			log.Printf("upload failed for %s: %v\n", path, err)
		}

		if idx < len(files)-1 && *delay > 0 {
			time.Sleep(*delay)
		}
	}
}

func resolveFiles(single, dir string) ([]string, error) {
	if single != "" {
		return []string{single}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

func uploadRecording(path, endpoint, transcript string, coach bool) error {
	fmt.Printf("→ %s\n", filepath.Base(path))

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read wav: %w", err)
	}

	record := models.RecordData{
		Audio:      base64.StdEncoding.EncodeToString(raw),
		Source:     filepath.Base(path),
		Transcript: transcript,
		Coach:      coach,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("post analysis request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var result models.AnalysisRecord
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode analysis response: %w", err)
	}
	if result.Analysis == nil {
		return fmt.Errorf("response carried no analysis")
	}

	fmt.Printf("   Overall Score: %d/100 (id=%s, %.0fms)\n", result.TotalScore, result.ID, result.LatencyMs)
	if len(result.Analysis.Report.Strengths) > 0 {
		fmt.Printf("   strengths: %s\n", strings.Join(result.Analysis.Report.Strengths, ", "))
	}
	if len(result.Analysis.Report.Improvements) > 0 {
		fmt.Printf("   improvements: %s\n", strings.Join(result.Analysis.Report.Improvements, ", "))
	}
	if result.Critique != "" {
		fmt.Printf("   coach: %s\n", result.Critique)
	}

	return nil
}
