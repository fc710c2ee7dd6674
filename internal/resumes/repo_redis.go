package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL bounds how long download links resolve when records live
// in Redis.
const DefaultRedisTTL = 24 * time.Hour

const redisKeyPrefix = "resume-builder:generation:"

// RedisKV is the subset of *redis.Client used by RedisRepo.
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisRepo stores generation records as JSON with a TTL.
type RedisRepo struct {
	Client RedisKV
	TTL    time.Duration
}

type redisRecord struct {
	ID        string    `json:"id"`
	Template  Template  `json:"template"`
	PDFKey    string    `json:"pdfKey,omitempty"`
	PDFSize   int64     `json:"pdfSize,omitempty"`
	DocxKey   string    `json:"docxKey,omitempty"`
	DocxSize  int64     `json:"docxSize,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Create writes the record under resume-builder:generation:<id>.
func (r *RedisRepo) Create(ctx context.Context, gen Generation) error {
	if r == nil || r.Client == nil {
		return errors.New("missing redis client")
	}
	data, err := json.Marshal(redisRecord(gen))
	if err != nil {
		return fmt.Errorf("encode generation: %w", err)
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	if err := r.Client.Set(ctx, redisKeyPrefix+gen.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set generation: %w", err)
	}
	return nil
}

// GetByID returns ErrNotFound for unknown or expired ids.
func (r *RedisRepo) GetByID(ctx context.Context, id string) (Generation, error) {
	if r == nil || r.Client == nil {
		return Generation{}, errors.New("missing redis client")
	}
	raw, err := r.Client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Generation{}, ErrNotFound
		}
		return Generation{}, fmt.Errorf("redis get generation: %w", err)
	}
	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Generation{}, fmt.Errorf("decode generation: %w", err)
	}
	return Generation(rec), nil
}

var _ Repo = (*RedisRepo)(nil)
