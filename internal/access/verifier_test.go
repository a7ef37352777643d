package access

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/lockguard-core/internal/user"
)

// fakeCodes is an in-memory CodeSource that counts lookups.
type fakeCodes struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
	calls int
}

func (f *fakeCodes) AccessCode(_ context.Context, identity string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	code, ok := f.codes[identity]
	if !ok {
		return "", user.ErrUserNotFound
	}
	return code, nil
}

func (f *fakeCodes) set(identity, code string) {
	f.mu.Lock()
	f.codes[identity] = code
	f.mu.Unlock()
}

func TestVerify(t *testing.T) {
	codes := &fakeCodes{codes: map[string]string{"alice": "123456", "blank": ""}}
	v := NewVerifier(codes)

	tests := []struct {
		name       string
		identity   string
		submitted  string
		wantGrant  bool
		wantReason Reason
	}{
		{"correct code", "alice", "123456", true, ReasonGranted},
		{"wrong code", "alice", "000000", false, ReasonCodeMismatch},
		{"prefix of code", "alice", "12345", false, ReasonCodeMismatch},
		{"code with trailing space", "alice", "123456 ", false, ReasonCodeMismatch},
		{"another identity's code", "bob", "123456", false, ReasonUnknownIdentity},
		{"empty submission", "alice", "", false, ReasonEmptyCode},
		{"no code stored", "blank", "123456", false, ReasonNoCodeSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Verify(context.Background(), tt.identity, tt.submitted)
			if res.Granted != tt.wantGrant {
				t.Errorf("Granted = %v, want %v", res.Granted, tt.wantGrant)
			}
			if res.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", res.Reason, tt.wantReason)
			}
			if res.Identity != tt.identity {
				t.Errorf("Identity = %q, want %q", res.Identity, tt.identity)
			}
		})
	}
}

func TestVerify_StoreErrorFailsClosed(t *testing.T) {
	storeErr := errors.New("database is locked")
	v := NewVerifier(&fakeCodes{err: storeErr})

	res := v.Verify(context.Background(), "alice", "123456")
	if res.Granted {
		t.Fatal("Granted = true on store error")
	}
	if res.Reason != ReasonStoreError || !errors.Is(res.Err, storeErr) {
		t.Errorf("Result = %+v, want store_error carrying the cause", res)
	}
}

func TestVerify_ReadsStoreEveryTime(t *testing.T) {
	codes := &fakeCodes{codes: map[string]string{"alice": "123456"}}
	v := NewVerifier(codes)
	ctx := context.Background()

	if !v.Verify(ctx, "alice", "123456").Granted {
		t.Fatal("initial code rejected")
	}

	codes.set("alice", "654321")

	if v.Verify(ctx, "alice", "123456").Granted {
		t.Error("old code still accepted after rotation")
	}
	if !v.Verify(ctx, "alice", "654321").Granted {
		t.Error("new code rejected after rotation")
	}
	if codes.calls != 3 {
		t.Errorf("store lookups = %d, want 3", codes.calls)
	}
}

func TestVerify_EmptySubmissionSkipsStore(t *testing.T) {
	codes := &fakeCodes{codes: map[string]string{}}
	NewVerifier(codes).Verify(context.Background(), "alice", "")

	if codes.calls != 0 {
		t.Errorf("store lookups = %d, want 0", codes.calls)
	}
}
