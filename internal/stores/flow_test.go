package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisFlowStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisFlowStore(rdb, "nf")
}

func eachStore(t *testing.T, run func(t *testing.T, store FlowStore)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		run(t, NewMemoryFlowStore())
	})
	t.Run("redis", func(t *testing.T) {
		mr, store := newTestRedisStore(t)
		defer mr.Close()
		run(t, store)
	})
}

func TestFlowRecordRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		ctx := context.Background()
		record := &FlowRecord{
			Step:      3,
			Purpose:   2,
			Email:     "maya@example.com",
			Otp:       "123456",
			Notice:    "Password reset OTP has been sent to your email. Please check your inbox.",
			Attempt:   7,
			UpdatedAt: time.Now().Unix(),
		}

		if err := store.Save(ctx, "f1", record, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := store.Load(ctx, "f1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.Step != record.Step || got.Purpose != record.Purpose {
			t.Fatalf("step/purpose mismatch: %+v", got)
		}
		if got.Email != record.Email || got.Otp != record.Otp || got.Notice != record.Notice {
			t.Fatalf("payload mismatch: %+v", got)
		}
		if got.Attempt != record.Attempt {
			t.Fatalf("attempt mismatch: %d", got.Attempt)
		}
	})
}

func TestFlowLoadMissing(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, ErrFlowNotFound) {
			t.Fatalf("expected ErrFlowNotFound, got %v", err)
		}
	})
}

func TestBeginAttemptTransitionsAndIncrements(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		ctx := context.Background()
		if err := store.Save(ctx, "f1", &FlowRecord{Step: 0, Attempt: 4}, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := store.BeginAttempt(ctx, "f1", 0, 1, time.Minute)
		if err != nil {
			t.Fatalf("BeginAttempt failed: %v", err)
		}
		if got.Step != 1 {
			t.Fatalf("expected transition step 1, got %d", got.Step)
		}
		if !got.InFlight {
			t.Fatal("expected in-flight flag set")
		}
		if got.Attempt != 5 {
			t.Fatalf("expected attempt 5, got %d", got.Attempt)
		}

		stored, err := store.Load(ctx, "f1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !stored.InFlight || stored.Step != 1 {
			t.Fatalf("expected persisted transition, got %+v", stored)
		}
	})
}

func TestBeginAttemptRejectsWrongStep(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		ctx := context.Background()
		if err := store.Save(ctx, "f1", &FlowRecord{Step: 3}, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if _, err := store.BeginAttempt(ctx, "f1", 0, 1, time.Minute); !errors.Is(err, ErrFlowSuperseded) {
			t.Fatalf("expected ErrFlowSuperseded, got %v", err)
		}
	})
}

func TestBeginAttemptRejectsBusyFlow(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		ctx := context.Background()
		if err := store.Save(ctx, "f1", &FlowRecord{Step: 0, InFlight: true}, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if _, err := store.BeginAttempt(ctx, "f1", 0, 0, time.Minute); !errors.Is(err, ErrFlowBusy) {
			t.Fatalf("expected ErrFlowBusy, got %v", err)
		}
	})
}

func TestCompleteAttemptReplacesRecord(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		ctx := context.Background()
		if err := store.Save(ctx, "f1", &FlowRecord{Step: 0}, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		begun, err := store.BeginAttempt(ctx, "f1", 0, 0, time.Minute)
		if err != nil {
			t.Fatalf("BeginAttempt failed: %v", err)
		}

		next := &FlowRecord{Step: 3, Purpose: 2, Email: "maya@example.com", Attempt: begun.Attempt}
		if err := store.CompleteAttempt(ctx, "f1", begun.Attempt, next, time.Minute); err != nil {
			t.Fatalf("CompleteAttempt failed: %v", err)
		}

		got, err := store.Load(ctx, "f1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.Step != 3 || got.InFlight {
			t.Fatalf("expected settled record, got %+v", got)
		}
	})
}

func TestCompleteAttemptRejectsStaleAttempt(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		ctx := context.Background()
		if err := store.Save(ctx, "f1", &FlowRecord{Step: 0}, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		begun, err := store.BeginAttempt(ctx, "f1", 0, 0, time.Minute)
		if err != nil {
			t.Fatalf("BeginAttempt failed: %v", err)
		}

		stale := begun.Attempt - 1
		err = store.CompleteAttempt(ctx, "f1", stale, &FlowRecord{Step: 5, Attempt: stale}, time.Minute)
		if !errors.Is(err, ErrFlowSuperseded) {
			t.Fatalf("expected ErrFlowSuperseded for stale attempt, got %v", err)
		}
	})
}

func TestCompleteAttemptRejectsSettledFlow(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		ctx := context.Background()

		// A logout-style overwrite clears the in-flight flag; the late
		// completion of the superseded attempt must be discarded.
		if err := store.Save(ctx, "f1", &FlowRecord{Step: 0}, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		begun, err := store.BeginAttempt(ctx, "f1", 0, 0, time.Minute)
		if err != nil {
			t.Fatalf("BeginAttempt failed: %v", err)
		}
		if err := store.Save(ctx, "f1", &FlowRecord{Step: 0, Attempt: begun.Attempt}, time.Minute); err != nil {
			t.Fatalf("overwrite failed: %v", err)
		}

		err = store.CompleteAttempt(ctx, "f1", begun.Attempt, &FlowRecord{Step: 5, Attempt: begun.Attempt}, time.Minute)
		if !errors.Is(err, ErrFlowSuperseded) {
			t.Fatalf("expected ErrFlowSuperseded after overwrite, got %v", err)
		}

		got, err := store.Load(ctx, "f1")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.Step != 0 {
			t.Fatalf("expected overwrite to win, got step %d", got.Step)
		}
	})
}

func TestDeleteRemovesRecord(t *testing.T) {
	eachStore(t, func(t *testing.T, store FlowStore) {
		ctx := context.Background()
		if err := store.Save(ctx, "f1", &FlowRecord{Step: 0}, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := store.Delete(ctx, "f1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Load(ctx, "f1"); !errors.Is(err, ErrFlowNotFound) {
			t.Fatalf("expected ErrFlowNotFound after delete, got %v", err)
		}
	})
}

func TestRedisFlowTTLExpiry(t *testing.T) {
	mr, store := newTestRedisStore(t)
	defer mr.Close()

	ctx := context.Background()
	if err := store.Save(ctx, "f1", &FlowRecord{Step: 3}, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Load(ctx, "f1"); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound after TTL, got %v", err)
	}
}

func TestDecodeRejectsTruncatedRecord(t *testing.T) {
	encoded, err := encodeFlowRecord(&FlowRecord{
		Step:  1,
		Email: "maya@example.com",
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	for _, cut := range []int{1, 4, len(encoded) / 2, len(encoded) - 1} {
		if _, err := decodeFlowRecord(encoded[:cut]); err == nil {
			t.Fatalf("expected decode error for %d-byte prefix", cut)
		}
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	encoded, err := encodeFlowRecord(&FlowRecord{Step: 1})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded[0] = 0xFF

	if _, err := decodeFlowRecord(encoded); err == nil {
		t.Fatal("expected decode error for unknown version")
	}
}
