package recording

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/config"
)

// Writer appends media chunks to per-session files and transcodes them
// once the interview ends. Each chunk is an open/write/close cycle so a
// crash mid-interview loses at most the chunk in flight.
type Writer struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	ffmpegPath string
	timeout    time.Duration
	frameRate  int
}

// NewWriter builds a writer using the configured ffmpeg binary.
func NewWriter(cfg config.RecordingConfig) *Writer {
	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Writer{
		locks:      make(map[string]*sync.Mutex),
		ffmpegPath: ffmpegPath,
		timeout:    cfg.FFmpegTimeout,
		frameRate:  cfg.VideoFrameRate,
	}
}

// sessionLock returns the lock serializing writes for one session.
// Different sessions write concurrently.
func (w *Writer) sessionLock(sessionID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	lock, ok := w.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[sessionID] = lock
	}
	return lock
}

// AppendVideo appends a video chunk to the session's video file.
func (w *Writer) AppendVideo(sessionID, path string, data []byte) error {
	return w.appendChunk(sessionID, path, data, false)
}

// AppendAudio appends an audio chunk and syncs it to disk. Audio feeds
// transcription, so it gets the extra durability.
func (w *Writer) AppendAudio(sessionID, path string, data []byte) error {
	return w.appendChunk(sessionID, path, data, true)
}

func (w *Writer) appendChunk(sessionID, path string, data []byte, fsync bool) error {
	if path == "" {
		return fmt.Errorf("no recording path for session %s", sessionID)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty chunk for session %s", sessionID)
	}

	lock := w.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open recording file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	if fsync {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("failed to sync chunk: %w", err)
		}
	}
	return nil
}

// Close drops the session's write lock. Chunks arriving afterwards
// allocate a fresh lock, so Close is safe to call more than once.
func (w *Writer) Close(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.locks[sessionID]; ok {
		delete(w.locks, sessionID)
		log.Info().Str("session_id", sessionID).Msg("recording locks released")
	}
}

// Finalize repairs and transcodes a raw stream into an MP4. The input is
// renamed to a raw_ prefix first and restored on any failure, so the
// captured data survives a broken transcode. Returns the output path.
func (w *Writer) Finalize(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no file to finalize")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot finalize missing file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	rawPath := filepath.Join(dir, "raw_"+filename)
	outPath := strings.TrimSuffix(path, ".webm") + ".mp4"

	log.Info().Str("file", filename).Int64("bytes", info.Size()).Msg("finalizing recording")

	if err := os.Rename(path, rawPath); err != nil {
		return "", fmt.Errorf("failed to stage raw file: %w", err)
	}

	args := []string{"-y", "-i", rawPath}
	if strings.Contains(strings.ToLower(filename), "video") {
		// Browsers deliver variable-frame-rate WebM; forcing CFR and
		// re-encoding fixes frozen frames and player compatibility.
		args = append(args,
			"-r", strconv.Itoa(w.frameRate),
			"-c:v", "libx264",
			"-preset", "fast",
			"-crf", "23",
			"-pix_fmt", "yuv420p",
			"-movflags", "faststart",
			"-c:a", "aac",
			"-b:a", "128k",
		)
	} else {
		args = append(args,
			"-vn",
			"-c:a", "aac",
			"-b:a", "128k",
		)
	}
	// aresample fixes audio that drifted from the video timestamps.
	args = append(args, "-af", "aresample=async=1", outPath)

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, w.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		w.restoreRaw(rawPath, path)
		if runCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("ffmpeg timed out after %s for %s", w.timeout, filename)
		}
		return "", fmt.Errorf("ffmpeg failed for %s: %w: %s", filename, err, truncateStderr(stderr.String()))
	}

	out, err := os.Stat(outPath)
	if err != nil || out.Size() == 0 {
		w.restoreRaw(rawPath, path)
		return "", fmt.Errorf("ffmpeg produced empty output for %s", filename)
	}

	if err := os.Remove(rawPath); err != nil {
		log.Warn().Err(err).Str("file", rawPath).Msg("failed to remove raw recording")
	}

	log.Info().Str("file", filepath.Base(outPath)).Int64("bytes", out.Size()).Msg("recording finalized")
	return outPath, nil
}

func (w *Writer) restoreRaw(rawPath, origPath string) {
	if _, err := os.Stat(rawPath); err != nil {
		return
	}
	if _, err := os.Stat(origPath); err == nil {
		return
	}
	if err := os.Rename(rawPath, origPath); err != nil {
		log.Error().Err(err).Str("file", rawPath).Msg("failed to restore raw recording")
	}
}

func truncateStderr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 400 {
		return s[len(s)-400:]
	}
	return s
}
