package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Asset summarizes what a timeline material records about a media file.
type Asset struct {
	Width      int
	Height     int
	DurationUS int64
	HasVideo   bool
	HasAudio   bool
}

// Asset reduces the result to dimensions and duration. Still images report a
// zero duration.
func (r Result) Asset() Asset {
	var a Asset
	for _, stream := range r.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			if !a.HasVideo {
				a.Width, a.Height = stream.Width, stream.Height
			}
			a.HasVideo = true
		case "audio":
			a.HasAudio = true
		}
	}
	if seconds := r.DurationSeconds(); seconds > 0 && !math.IsNaN(seconds) {
		a.DurationUS = int64(math.Round(seconds * 1_000_000))
	}
	return a
}

// DurationSeconds returns the container duration in seconds, 0 when absent
// and NaN when ffprobe reported something unparseable such as "N/A".
func (r Result) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

// Prober inspects assets with a configured ffprobe binary.
type Prober struct {
	Binary string
}

// Probe inspects path and returns its Asset summary. A file with neither a
// video nor an audio stream is rejected.
func (p Prober) Probe(ctx context.Context, path string) (Asset, error) {
	result, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return Asset{}, err
	}
	asset := result.Asset()
	if !asset.HasVideo && !asset.HasAudio {
		return Asset{}, fmt.Errorf("ffprobe: %s has no audio or video stream", path)
	}
	return asset, nil
}
