package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	Reset()
	if Ping() != DefaultPing || Short() != DefaultShort || Medium() != DefaultMedium ||
		Long() != DefaultLong || Batch() != DefaultBatch {
		t.Errorf("unexpected defaults: %+v", Current())
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})
	if Short() != 7*time.Second {
		t.Errorf("Short = %v", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium changed to %v", Medium())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("NAGARSEVA_TIMEOUT_PING", "500ms")
	t.Setenv("NAGARSEVA_TIMEOUT_LONG", "not-a-duration")
	t.Setenv("NAGARSEVA_TIMEOUT_BATCH", "-1s")

	if n := ConfigureFromEnv(); n != 1 {
		t.Errorf("applied %d values, want 1", n)
	}
	if Ping() != 500*time.Millisecond {
		t.Errorf("Ping = %v", Ping())
	}
	if Long() != DefaultLong || Batch() != DefaultBatch {
		t.Errorf("invalid values applied: %+v", Current())
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()
	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v", ctx.Err())
	}
}
