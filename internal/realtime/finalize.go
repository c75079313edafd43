package realtime

import (
	"context"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/recording"
)

// processEndedInterview runs the post-interview pipeline: finalize any
// remaining raw recordings, evaluate the conversation and persist the
// artifacts next to the recordings. Each step tolerates failure of the
// previous one so a broken recording never blocks the evaluation.
func (o *Orchestrator) processEndedInterview(ctx context.Context, sessionID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("session_id", sessionID).Msg("interview processing panicked")
		}
	}()

	s, ok := o.store.Get(ctx, sessionID)
	if !ok {
		log.Warn().Str("session_id", sessionID).Msg("session vanished before processing")
		return
	}

	for _, path := range []string{s.VideoFile, s.AudioFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := o.writer.Finalize(ctx, path); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Str("path", path).Msg("background finalize failed")
		}
	}

	sc := o.evaluator.Evaluate(ctx, s)

	if err := recording.SaveEvaluation(s, sc); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to save evaluation")
	}
	if err := recording.SaveMetadata(s, sc); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to save metadata")
	}
	if err := recording.SaveTranscript(s); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to save transcript")
	}

	log.Info().
		Str("session_id", sessionID).
		Int("questions_asked", len(s.History)).
		Str("overall_rating", strconv.FormatFloat(sc.OverallRating, 'f', 1, 64)).
		Msg("interview processing complete")
}
