package session

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/interfaces"
	"github.com/bobmcallan/openvault-portal/internal/models"
	"github.com/bobmcallan/openvault-portal/internal/storage/memory"
)

// =============================================================================
// Manager Stress Tests
// =============================================================================

// isWindowOf reports whether sub appears as a contiguous run inside all.
func isWindowOf(sub, all []*Session) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(all); i++ {
		match := true
		for j := range sub {
			if all[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// --- Subscribe/unsubscribe churn during transitions ---

func TestManager_StressSubscribeChurnDuringTransitions(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t, memory.NewKVStorage())

	all := &recorder{}
	m.Subscribe(all.record)

	const writers = 4
	const subscribers = 16
	const rounds = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			token := validToken(t, clock, id, "user@x.y")
			for i := 0; i < rounds; i++ {
				_ = m.Authenticate(ctx, models.AuthResponse{Token: token})
				_ = m.Logout(ctx, nil)
			}
		}(int64(w + 1))
	}

	views := make([]*recorder, subscribers)
	for s := 0; s < subscribers; s++ {
		views[s] = &recorder{}
		wg.Add(1)
		go func(rec *recorder) {
			defer wg.Done()
			for i := 0; i < rounds/10; i++ {
				unsub := m.Subscribe(rec.record)
				time.Sleep(time.Microsecond)
				unsub()
			}
		}(views[s])
	}
	wg.Wait()

	m.mu.Lock()
	remaining := len(m.subs)
	m.mu.Unlock()
	if remaining != 1 {
		t.Errorf("expected only the global subscriber to remain, got %d", remaining)
	}

	if got, want := len(all.values()), 1+writers*rounds*2; got != want {
		t.Errorf("expected %d emissions, got %d", want, got)
	}

	// Every value a churning subscriber saw must have been published.
	global := all.values()
	for i, rec := range views {
		seen := rec.values()
		if len(seen) < rounds/10 {
			t.Errorf("subscriber %d: expected at least %d replays, got %d", i, rounds/10, len(seen))
		}
		for _, s := range seen {
			if !isWindowOf([]*Session{s}, global) {
				t.Errorf("subscriber %d received a value never published: %+v", i, s)
				break
			}
		}
	}
}

// --- Ordering for a single long-lived late subscriber ---

func TestManager_StressLateSubscriberSeesContiguousHistory(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t, memory.NewKVStorage())

	all := &recorder{}
	m.Subscribe(all.record)

	var started atomic.Bool
	late := &recorder{}
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			token := validToken(t, clock, id, "user@x.y")
			for i := 0; i < 40; i++ {
				if id == 1 && i == 20 && started.CompareAndSwap(false, true) {
					m.Subscribe(late.record)
				}
				_ = m.Authenticate(ctx, models.AuthResponse{Token: token})
				_ = m.Logout(ctx, nil)
			}
		}(int64(w + 1))
	}
	wg.Wait()

	if !isWindowOf(late.values(), all.values()) {
		t.Error("expected late subscriber to see replay then every later transition in publish order")
	}
}

// --- Replay agrees with Current ---

func TestManager_StressReplayMatchesCurrent(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t, memory.NewKVStorage())

	var mismatches atomic.Int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		token := validToken(t, clock, 9, "n@x.y")
		for i := 0; i < 200; i++ {
			_ = m.Authenticate(ctx, models.AuthResponse{Token: token})
			_ = m.Logout(ctx, nil)
		}
	}()

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				first := true
				unsub := m.Subscribe(func(s *Session) {
					if first {
						first = false
						if m.Current() != s {
							mismatches.Add(1)
						}
					}
				})
				unsub()
			}
		}()
	}
	wg.Wait()

	if n := mismatches.Load(); n != 0 {
		t.Errorf("expected replay to equal Current at subscribe time, got %d mismatches", n)
	}
}

// --- Expiry racing many subscribers ---

func TestManager_StressExpiryClearedOnceUnderConcurrentQueries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStorage()
	m, clock := newTestManager(t, store)
	_ = m.Authenticate(ctx, models.AuthResponse{Token: validToken(t, clock, 7, "a@b.com")})

	early := &recorder{}
	m.Subscribe(early.record)

	clock.Advance(2 * time.Hour)

	var live atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			if g%2 == 0 {
				if m.IsAuthenticated(ctx) {
					live.Add(1)
				}
				return
			}
			unsub := m.Subscribe(func(s *Session) {
				if s != nil {
					live.Add(1)
				}
			})
			unsub()
		}(g)
	}
	wg.Wait()

	if n := live.Load(); n != 0 {
		t.Errorf("expected no caller to observe the expired session, got %d", n)
	}
	if seen := early.values(); len(seen) != 2 || seen[1] != nil {
		t.Errorf("expected exactly one nil emission, got %v", seen)
	}
	if _, err := store.Get(ctx, DefaultTokenKey); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected expired token removed, got %v", err)
	}
}

// --- Hostile tokens ---

func TestManager_StressHostileTokens(t *testing.T) {
	payload := func(s string) string {
		return "h." + base64.RawURLEncoding.EncodeToString([]byte(s)) + ".s"
	}

	hostile := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"dots only", ".."},
		{"four segments", "a.b.c.d"},
		{"payload not base64", "h.!!!.s"},
		{"payload array", payload(`[1,2,3]`)},
		{"payload null", payload(`null`)},
		{"exp string", payload(`{"userId":1,"sub":"a@b.c","exp":"tomorrow"}`)},
		{"exp negative", payload(`{"userId":1,"sub":"a@b.c","exp":-1e20}`)},
		{"exp missing", payload(`{"userId":1,"sub":"a@b.c"}`)},
		{"userId string", payload(`{"userId":"1","sub":"a@b.c","exp":4102444800}`)},
		{"huge payload", payload(`{"userId":1,"sub":"` + strings.Repeat("A", 1<<16) + `","exp":1}`)},
		{"null bytes", "h\x00.p\x00.s\x00"},
	}

	for _, tc := range hostile {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			m, _ := newTestManager(t, memory.NewKVStorage())

			rec := &recorder{}
			m.Subscribe(rec.record)

			if err := m.Authenticate(ctx, models.AuthResponse{Token: tc.token}); err != nil {
				t.Fatalf("unexpected storage error: %v", err)
			}
			if m.Current() != nil {
				t.Error("expected no session from hostile token")
			}
			if m.IsAuthenticated(ctx) {
				t.Error("expected hostile token to be unauthenticated")
			}
			for _, s := range rec.values() {
				if s != nil {
					t.Errorf("expected only absence to be published, got %+v", s)
				}
			}
		})
	}
}
