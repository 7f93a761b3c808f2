package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/hyroxcoach/internal/telemetry/tracing"
	"github.com/2beens/hyroxcoach/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	tokenLength      = 35
	sessionKeyPrefix = "hyrox-coach-session||"
	tokensSetKey     = "hyrox-coach-sessions"
)

var ErrSessionNotFound = errors.New("session not found")

// Session binds a token to the athlete every coaching call of that token acts for.
type Session struct {
	AthleteID uuid.UUID `json:"athlete_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	now         func() time.Time
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewSessionStore(ttl time.Duration, redisClient *redis.Client) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionStore{
		redisClient:    redisClient,
		ttl:            ttl,
		now:            time.Now,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Create stores a new session for the athlete and returns its token.
func (s *SessionStore) Create(ctx context.Context, athleteID, userID uuid.UUID) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.session.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("athlete_id", athleteID.String()))

	token, err := s.RandStringFunc(tokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	sessionJson, err := json.Marshal(Session{
		AthleteID: athleteID,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := s.redisClient.Set(ctx, sessionKeyPrefix+token, string(sessionJson), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	// add token to list of sessions
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("index session: %w", err)
	}

	return token, nil
}

// Resolve returns the session of the token, ErrSessionNotFound when it is unknown or expired.
func (s *SessionStore) Resolve(ctx context.Context, token string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.session.resolve")
	defer func() {
		if errors.Is(err, ErrSessionNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return nil, ErrSessionNotFound
	}

	val, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.AthleteID == uuid.Nil {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// Revoke deletes the session. It reports whether the token existed.
func (s *SessionStore) Revoke(ctx context.Context, token string) (bool, error) {
	deleted, err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	// remove token from the list of sessions
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, fmt.Errorf("unindex session: %w", err)
	}

	return deleted > 0, nil
}

// ScanAndClean drops tokens of expired sessions from the session index.
func (s *SessionStore) ScanAndClean(ctx context.Context) {
	tokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("session store, scan and clean, get sessions: %s", err)
		return
	}
	if len(tokens) == 0 {
		log.Debugln("session store, scan and clean abort, no sessions")
		return
	}

	log.Debugf("session store, scan and clean [%d sessions] start ...", len(tokens))
	var toRemove []any
	for _, token := range tokens {
		exists, err := s.redisClient.Exists(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			log.Errorf("session store, scan and clean token: %s", err)
			continue
		}
		if exists == 0 {
			toRemove = append(toRemove, token)
		}
	}
	if len(toRemove) == 0 {
		return
	}

	if err := s.redisClient.SRem(ctx, tokensSetKey, toRemove...).Err(); err != nil {
		log.Errorf("session store, clean %d tokens: %s", len(toRemove), err)
		return
	}
	log.Debugf("session store, cleaned %d expired sessions", len(toRemove))
}
