package reindex

import (
	"context"
	"testing"
)

func TestStartDisabledWhenUnconfigured(t *testing.T) {
	cancel, err := Start(context.Background(), "", func() error {
		t.Fatal("run called without a schedule")
		return nil
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
}

func TestStartRejectsInvalidExpression(t *testing.T) {
	if _, err := Start(context.Background(), "not a cron", nil); err == nil {
		t.Fatal("invalid cron expression accepted")
	}
}

func TestStartAndCancel(t *testing.T) {
	cancel, err := Start(context.Background(), "0 3 * * *", func() error { return nil })
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
}
