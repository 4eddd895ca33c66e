package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	flowernursery "github.com/swarooprajana/flowernursery"
	"github.com/swarooprajana/flowernursery/validate"
)

type flowState struct {
	id string
	mu sync.Mutex
}

// alwaysOKIdentity stands in for the remote identity service so the run
// measures flow-store coordination, not network round trips.
type alwaysOKIdentity struct{}

func (alwaysOKIdentity) Register(context.Context, string, string, string, string) error { return nil }
func (alwaysOKIdentity) Login(context.Context, string, string) error                    { return nil }
func (alwaysOKIdentity) VerifyLoginOtp(context.Context, string, string) error           { return nil }
func (alwaysOKIdentity) ForgotPassword(context.Context, string) error                   { return nil }
func (alwaysOKIdentity) VerifyResetOtp(context.Context, string, string) error           { return nil }
func (alwaysOKIdentity) ResetPassword(context.Context, string, string, string) error    { return nil }

func main() {
	var (
		flows       = flag.Int("flows", 50000, "number of flows to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (snapshot + login cycle)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "nf", "flow key prefix")
	)
	flag.Parse()

	if *flows <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "flows, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	var client *redis.Client
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := flowernursery.DefaultConfig()
	cfg.Service.BaseURL = "http://identity.invalid"
	cfg.Flow.RedisPrefix = *prefix

	ctrl, err := flowernursery.New().
		WithConfig(cfg).
		WithRedis(client).
		WithIdentityService(alwaysOKIdentity{}).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer ctrl.Close()

	states := make([]flowState, *flows)
	fmt.Printf("seeding %d flows...\n", *flows)
	startSeed := time.Now()
	for i := 0; i < *flows; i++ {
		snap, err := ctrl.NewFlow(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		states[i].id = snap.FlowID
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	snapshotStats := runSnapshotPhase(ctx, ctrl, states, *ops, *concurrency)
	loginStats := runLoginCyclePhase(ctx, ctrl, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("snapshot", snapshotStats)
	printStats("login-cycle", loginStats)

	m := ctrl.MetricsSnapshot()
	fmt.Printf("flows=%d logins=%d otp=%d logouts=%d\n",
		m.Counters[flowernursery.MetricFlowCreated],
		m.Counters[flowernursery.MetricLoginSuccess],
		m.Counters[flowernursery.MetricLoginOtpSuccess],
		m.Counters[flowernursery.MetricLogout],
	)
}

func runSnapshotPhase(ctx context.Context, ctrl *flowernursery.Controller, states []flowState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				_, err := ctrl.State(ctx, states[idx].id)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

// runLoginCyclePhase drives each sampled flow through credential submit,
// OTP verification, and logout. The per-flow lock keeps workers off the
// same flow; the in-flight guard would otherwise reject the overlap.
func runLoginCyclePhase(ctx context.Context, ctrl *flowernursery.Controller, states []flowState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	form := validate.LoginForm{Email: "load@example.com", Password: "petunia7"}

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				err := loginCycle(ctx, ctrl, state.id, form)
				d := time.Since(t0)
				state.mu.Unlock()

				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func loginCycle(ctx context.Context, ctrl *flowernursery.Controller, flowID string, form validate.LoginForm) error {
	if _, err := ctrl.SubmitLogin(ctx, flowID, form); err != nil {
		return err
	}
	if _, err := ctrl.SubmitOtp(ctx, flowID, "123456"); err != nil {
		return err
	}
	_, err := ctrl.Logout(ctx, flowID)
	return err
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
