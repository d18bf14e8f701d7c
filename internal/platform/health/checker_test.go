package health

import (
	"context"
	"testing"
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/database"
	"github.com/SlpAus/daily-gacha-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPerformCheckMarksUnreachableRedisUnhealthy(t *testing.T) {
	database.UpdateStatus(true, "")
	t.Cleanup(func() { database.UpdateStatus(true, "") })

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	c := NewChecker(rdb, zap.New(core))

	c.PerformCheck(context.Background())
	if database.IsRedisHealthy() {
		t.Fatalf("redis should be marked unhealthy")
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Fatalf("expected one warn log on state change")
	}

	// 状态未变化时不重复记录
	c.PerformCheck(context.Background())
	if logs.Len() != 1 {
		t.Fatalf("logs = %d, want 1", logs.Len())
	}
}

func TestRunIDPattern(t *testing.T) {
	info := "# Server\r\nredis_version:7.2.4\r\nrun_id:3f2a9c0b1d\r\ntcp_port:6379\r\n"
	m := runIDPattern.FindStringSubmatch(info)
	if len(m) < 2 || m[1] != "3f2a9c0b1d" {
		t.Fatalf("match = %v", m)
	}
}

func TestRunExitsOnGracefulShutdown(t *testing.T) {
	graceful := lifecycle.NewManager("graceful", zap.NewNop())
	forceful := lifecycle.NewManager("forceful", zap.NewNop())
	gh, err := graceful.NewServiceHandle("redis-health-checker")
	if err != nil {
		t.Fatalf("graceful handle: %v", err)
	}
	fh, err := forceful.NewServiceHandle("redis-health-checker")
	if err != nil {
		t.Fatalf("forceful handle: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewChecker(rdb, zap.NewNop())

	done := make(chan struct{})
	go func() {
		c.Run(gh, fh)
		close(done)
	}()

	graceful.Shutdown()
	if remaining := graceful.WaitWithTimeout(time.Second); len(remaining) != 0 {
		t.Fatalf("graceful remaining = %v", remaining)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after graceful shutdown")
	}
	// 强制阶段的句柄也随之释放
	if remaining := forceful.WaitWithTimeout(100 * time.Millisecond); len(remaining) != 0 {
		t.Fatalf("forceful remaining = %v", remaining)
	}
}
