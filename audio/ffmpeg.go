package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"speech-coach/utils"
)

// ErrFFmpegMissing is returned when a container format needs conversion but
// no ffmpeg binary is on PATH.
var ErrFFmpegMissing = errors.New("ffmpeg not found on PATH")

// CheckFFmpegAvailable reports whether ffmpeg can be executed.
func CheckFFmpegAvailable() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("%w: %v", ErrFFmpegMissing, err)
	}
	return nil
}

// ConvertToWAV extracts the audio track of path into a temporary mono 16-bit
// WAV at DefaultSampleRate. The caller removes the returned file.
func ConvertToWAV(ctx context.Context, path string) (string, error) {
	if err := CheckFFmpegAvailable(); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(os.TempDir(), fmt.Sprintf("%s_%d.wav", base, time.Now().UnixNano()))

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(DefaultSampleRate),
		"-c:a", "pcm_s16le",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = utils.DeleteFile(out)
		return "", fmt.Errorf("ffmpeg failed for %s: %w: %s", path, err, tail(output, 512))
	}

	return out, nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return strings.TrimSpace(string(b))
}
