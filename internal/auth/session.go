package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dealer-portal/internal/domain"
	"dealer-portal/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

const sessionKeyPrefix = "session:"

type sessionRecord struct {
	UserID   uint64    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// RedisSessions stores session tokens in redis; the host issues them.
type RedisSessions struct {
	rdb   *redis.Client
	users repository.UserRepository
	ttl   time.Duration
}

func NewRedisSessions(rdb *redis.Client, users repository.UserRepository, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, users: users, ttl: ttl}
}

func (s *RedisSessions) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	b, err := s.rdb.Get(ctx, sessionKeyPrefix+SessionID(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var rec sessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	u, err := s.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.Session{ID: SessionID(token), User: *u}, nil
}

// Issue creates a session for userID and returns its bearer token.
func (s *RedisSessions) Issue(ctx context.Context, userID uint64) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(sessionRecord{UserID: userID, IssuedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+SessionID(token), b, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessions) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+SessionID(token)).Err()
}

// SessionID derives the stable, non-secret session identifier from a token.
func SessionID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
