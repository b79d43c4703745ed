package db

import (
	"testing"
	"time"
)

func TestApplyStatementTimeoutURLForm(t *testing.T) {
	got := applyStatementTimeout("postgres://u:p@localhost:5432/fleet", 5*time.Second)
	want := "postgres://u:p@localhost:5432/fleet?statement_timeout=5000"
	if got != want {
		t.Fatalf("expected %q got %q", want, got)
	}

	got = applyStatementTimeout("postgres://u:p@localhost:5432/fleet?sslmode=disable", 5*time.Second)
	want = "postgres://u:p@localhost:5432/fleet?sslmode=disable&statement_timeout=5000"
	if got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestApplyStatementTimeoutKeyValueForm(t *testing.T) {
	got := applyStatementTimeout("host=localhost user=fleet dbname=fleet", 2*time.Second)
	want := "host=localhost user=fleet dbname=fleet statement_timeout=2000"
	if got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestApplyStatementTimeoutLeavesExistingAlone(t *testing.T) {
	dsn := "postgres://u:p@localhost/fleet?statement_timeout=100"
	if got := applyStatementTimeout(dsn, 5*time.Second); got != dsn {
		t.Fatalf("existing setting should survive, got %q", got)
	}
	if got := applyStatementTimeout(dsn, 0); got != dsn {
		t.Fatalf("zero timeout should be a no-op, got %q", got)
	}
}
