package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"campuscms/internal/testutil"
)

func TestNew(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	t.Run("Development", func(t *testing.T) {
		sm := New(db, true)

		if sm.Lifetime != 24*time.Hour {
			t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
		}
		if !sm.Cookie.HttpOnly {
			t.Error("session cookie must be HttpOnly")
		}
		if sm.Cookie.SameSite != http.SameSiteLaxMode {
			t.Errorf("SameSite = %v, want Lax", sm.Cookie.SameSite)
		}
		if sm.Cookie.Secure {
			t.Error("dev cookies must not require HTTPS")
		}
	})

	t.Run("Production", func(t *testing.T) {
		sm := New(db, false)
		if !sm.Cookie.Secure {
			t.Error("production cookies must be Secure")
		}
	})

	t.Run("RoundTripThroughStore", func(t *testing.T) {
		sm := New(db, true)

		ctx, err := sm.Load(context.Background(), "")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		sm.Put(ctx, "user_id", int64(42))

		token, _, err := sm.Commit(ctx)
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}

		ctx2, err := sm.Load(context.Background(), token)
		if err != nil {
			t.Fatalf("Load with token: %v", err)
		}
		if got := sm.GetInt64(ctx2, "user_id"); got != 42 {
			t.Errorf("user_id = %d, want 42", got)
		}
	})
}
