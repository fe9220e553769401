// internal/store/redis_store.go
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/shiftsync/shiftsync_backend/internal/models"
)

const shiftKeyPrefix = "shift:"

// maxTxRetries bounds the optimistic-transaction retry loop in
// FindAndUpdate when another writer touches the same document.
const maxTxRetries = 10

// RedisStore keeps each shift as one JSON document under "shift:<id>".
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) GetByID(ctx context.Context, id string) (*models.Shift, error) {
	data, err := r.client.Get(ctx, shiftKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var shift models.Shift
	if err := json.Unmarshal(data, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *RedisStore) FindAll(ctx context.Context, limit int) ([]*models.Shift, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	shifts, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(shifts) > limit {
		shifts = shifts[:limit]
	}
	return shifts, nil
}

func (r *RedisStore) FindWhere(ctx context.Context, match func(*models.Shift) bool) ([]*models.Shift, error) {
	shifts, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Shift
	for _, shift := range shifts {
		if match(shift) {
			out = append(out, shift)
		}
	}
	return out, nil
}

func (r *RedisStore) Insert(ctx context.Context, shift *models.Shift) error {
	data, err := json.Marshal(shift)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, shiftKeyPrefix+shift.ID, data, 0).Err()
}

// FindAndUpdate runs an optimistic WATCH/MULTI transaction: the document is
// re-read and mutate re-applied until the write goes through unchallenged.
func (r *RedisStore) FindAndUpdate(ctx context.Context, id string, mutate func(*models.Shift)) (*models.Shift, error) {
	key := shiftKeyPrefix + id
	var updated *models.Shift

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var shift models.Shift
		if err := json.Unmarshal(data, &shift); err != nil {
			return err
		}
		mutate(&shift)

		out, err := json.Marshal(&shift)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			updated = &shift
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, redis.TxFailedErr
}

func (r *RedisStore) DeleteByID(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, shiftKeyPrefix+id).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) scan(ctx context.Context) ([]*models.Shift, error) {
	keys, err := r.client.Keys(ctx, shiftKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	var shifts []*models.Shift
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var shift models.Shift
		if err := json.Unmarshal(data, &shift); err != nil {
			continue
		}
		shifts = append(shifts, &shift)
	}
	return shifts, nil
}
