package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisFlowStore keeps flow records in Redis so a flow survives any single
// front-end instance.
type RedisFlowStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisFlowStore(redisClient redis.UniversalClient, prefix string) *RedisFlowStore {
	if prefix == "" {
		prefix = "nf"
	}
	return &RedisFlowStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisFlowStore) key(flowID string) string {
	return s.prefix + ":" + flowID
}

func (s *RedisFlowStore) Load(ctx context.Context, flowID string) (*FlowRecord, error) {
	data, err := s.redis.Get(ctx, s.key(flowID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrFlowNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrFlowRedisUnavailable, err)
	}

	return decodeFlowRecord(data)
}

func (s *RedisFlowStore) Save(ctx context.Context, flowID string, record *FlowRecord, ttl time.Duration) error {
	encoded, err := encodeFlowRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(flowID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrFlowRedisUnavailable, err)
	}

	return nil
}

func (s *RedisFlowStore) BeginAttempt(ctx context.Context, flowID string, expectedStep, transitionStep uint8, ttl time.Duration) (*FlowRecord, error) {
	const maxRetries = 4
	key := s.key(flowID)

	for i := 0; i < maxRetries; i++ {
		var begun *FlowRecord

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeFlowRecord(data)
			if err != nil {
				return err
			}

			if record.Step != expectedStep {
				return ErrFlowSuperseded
			}
			if record.InFlight {
				return ErrFlowBusy
			}

			record.Step = transitionStep
			record.InFlight = true
			record.Attempt++
			record.UpdatedAt = time.Now().Unix()

			updated, err := encodeFlowRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			if err != nil {
				return err
			}

			begun = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, ErrFlowNotFound
			case errors.Is(err, ErrFlowBusy), errors.Is(err, ErrFlowSuperseded):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", ErrFlowRedisUnavailable, err)
			}
		}

		return begun, nil
	}

	return nil, ErrFlowBusy
}

func (s *RedisFlowStore) CompleteAttempt(ctx context.Context, flowID string, attempt uint32, next *FlowRecord, ttl time.Duration) error {
	const maxRetries = 4
	key := s.key(flowID)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeFlowRecord(data)
			if err != nil {
				return err
			}

			if record.Attempt != attempt || !record.InFlight {
				return ErrFlowSuperseded
			}

			applied := cloneFlowRecord(next)
			applied.Attempt = attempt
			applied.InFlight = false
			applied.UpdatedAt = time.Now().Unix()

			updated, err := encodeFlowRecord(applied)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return ErrFlowNotFound
			case errors.Is(err, ErrFlowSuperseded):
				return err
			default:
				return fmt.Errorf("%w: %v", ErrFlowRedisUnavailable, err)
			}
		}

		return nil
	}

	return ErrFlowSuperseded
}

func (s *RedisFlowStore) Delete(ctx context.Context, flowID string) error {
	if err := s.redis.Del(ctx, s.key(flowID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrFlowRedisUnavailable, err)
	}
	return nil
}
