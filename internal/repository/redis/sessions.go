package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/config"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
)

const (
	sessionKeyPrefix = "session:"
	mappingKeyPrefix = "interview:mapping:"
)

// SessionStore keeps interview sessions in Redis as JSON blobs with a TTL.
// A second key per session maps the interview id back to the session id so
// reconnects can resume without scanning.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore connects to Redis and verifies the connection.
func NewSessionStore(cfg config.RedisConfig, ttl time.Duration) (*SessionStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SessionStore{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func mappingKey(interviewID int64) string {
	return mappingKeyPrefix + strconv.FormatInt(interviewID, 10)
}

// Put stores the session and refreshes both keys' TTL. The two writes are
// not transactional; a failed mapping write leaves the session reachable
// by session id only, which a later Put repairs.
func (s *SessionStore) Put(ctx context.Context, session *domain.InterviewSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKey(session.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	if err := s.rdb.Set(ctx, mappingKey(session.InterviewID), session.SessionID, s.ttl).Err(); err != nil {
		log.Warn().Err(err).
			Str("session_id", session.SessionID).
			Int64("interview_id", session.InterviewID).
			Msg("session stored but interview mapping write failed")
	}

	return nil
}

// Get returns the session, or false on miss. Backend or decode failures
// are logged and read as absence so callers degrade uniformly.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.InterviewSession, bool) {
	data, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to read session")
		return nil, false
	}

	var session domain.InterviewSession
	if err := json.Unmarshal(data, &session); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to unmarshal session")
		return nil, false
	}

	return &session, true
}

// GetByInterviewID resolves the mapping key then loads the session.
func (s *SessionStore) GetByInterviewID(ctx context.Context, interviewID int64) (*domain.InterviewSession, bool) {
	sessionID, err := s.rdb.Get(ctx, mappingKey(interviewID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Int64("interview_id", interviewID).Msg("failed to resolve interview mapping")
		return nil, false
	}

	return s.Get(ctx, sessionID)
}

// Remove deletes the session and its mapping key. The session is fetched
// first so the mapping can be cleaned up too.
func (s *SessionStore) Remove(ctx context.Context, sessionID string) bool {
	session, ok := s.Get(ctx, sessionID)
	if !ok {
		return false
	}

	if err := s.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete session")
		return false
	}

	if err := s.rdb.Del(ctx, mappingKey(session.InterviewID)).Err(); err != nil {
		log.Warn().Err(err).Int64("interview_id", session.InterviewID).Msg("failed to delete interview mapping")
	}

	return true
}

// Exists reports whether a session record is present.
func (s *SessionStore) Exists(ctx context.Context, sessionID string) bool {
	n, err := s.rdb.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to check session existence")
		return false
	}
	return n > 0
}

// ListAll scans all session keys and loads each record. Intended for the
// periodic cleanup sweep, not request handling.
func (s *SessionStore) ListAll(ctx context.Context) map[string]*domain.InterviewSession {
	sessions := make(map[string]*domain.InterviewSession)
	var cursor uint64

	for {
		keys, nextCursor, err := s.rdb.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			log.Error().Err(err).Msg("failed to scan session keys")
			return sessions
		}

		for _, key := range keys {
			sessionID := key[len(sessionKeyPrefix):]
			if session, ok := s.Get(ctx, sessionID); ok {
				sessions[sessionID] = session
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return sessions
}
