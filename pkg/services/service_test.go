package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type stubService struct {
	name    string
	initErr error
	rec     *recorder
}

func (s *stubService) Init() error {
	s.rec.add("init " + s.name)
	return s.initErr
}
func (s *stubService) Run(ctx context.Context) { <-ctx.Done() }
func (s *stubService) Stop()                   { s.rec.add("stop " + s.name) }

func TestManagerStopsInReverseOnCancel(t *testing.T) {
	rec := &recorder{}
	m := NewManager(nopLogger{})
	m.AddService(&stubService{name: "a", rec: rec}, &stubService{name: "b", rec: rec})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"init a", "init b", "stop b", "stop a"}
	got := rec.snapshot()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestManagerInitFailureStopsStartedServices(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	m := NewManager(nopLogger{})
	m.AddService(&stubService{name: "a", rec: rec}, &stubService{name: "b", rec: rec, initErr: boom})

	if err := m.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run error = %v", err)
	}
	got := rec.snapshot()
	if len(got) != 3 || got[2] != "stop a" {
		t.Errorf("events = %v", got)
	}
}
