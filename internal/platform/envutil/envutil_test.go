package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("AINEWS_TEST_INT", "nope")
	if got := Int("AINEWS_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: want=%d got=%d", 7, got)
	}
	t.Setenv("AINEWS_TEST_INT", " 42 ")
	if got := Int("AINEWS_TEST_INT", 7); got != 42 {
		t.Fatalf("Int: want=%d got=%d", 42, got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("AINEWS_TEST_BOOL", "off")
	if Bool("AINEWS_TEST_BOOL", true) {
		t.Fatalf("Bool: want=false got=true")
	}
	t.Setenv("AINEWS_TEST_BOOL", "maybe")
	if !Bool("AINEWS_TEST_BOOL", true) {
		t.Fatalf("Bool: want default true")
	}
}

func TestDurations(t *testing.T) {
	t.Setenv("AINEWS_TEST_SECONDS", "0")
	if got := Seconds("AINEWS_TEST_SECONDS", 300*time.Second); got != 300*time.Second {
		t.Fatalf("Seconds: want=%s got=%s", 300*time.Second, got)
	}
	t.Setenv("AINEWS_TEST_HOURS", "1.5")
	if got := Hours("AINEWS_TEST_HOURS", 24*time.Hour); got != 90*time.Minute {
		t.Fatalf("Hours: want=%s got=%s", 90*time.Minute, got)
	}
}
