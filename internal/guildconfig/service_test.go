package guildconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/anurag-krmkr/Parrot/pkg/database"
	"github.com/anurag-krmkr/Parrot/pkg/models"
)

func newTestService() (*Service, *database.MemoryStore) {
	store := database.NewMemoryStore()
	return NewService(store, "$", 10), store
}

func TestGetReturnsDefaultsForUnknownGuild(t *testing.T) {
	svc, _ := newTestService()

	config, err := svc.Get(context.Background(), "guild-1")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if config.Prefix != "$" {
		t.Errorf("Prefix = %q, want %q", config.Prefix, "$")
	}
	if config.GuildID != "guild-1" {
		t.Errorf("GuildID = %q, want %q", config.GuildID, "guild-1")
	}
}

func TestSetThenGet(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	config := models.DefaultGuildConfig("guild-1", "$")
	config.ModRole = "role-mod"
	config.ActionLog = "chan-log"
	config.WarnAuto = []models.EscalationRule{
		{Count: 3, Action: "kick"},
		{Count: 5, Action: "ban"},
	}

	if err := svc.Set(ctx, config); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}

	got, err := svc.Get(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if got.ModRole != "role-mod" {
		t.Errorf("ModRole = %q, want %q", got.ModRole, "role-mod")
	}
	if len(got.WarnAuto) != 2 {
		t.Errorf("len(WarnAuto) = %d, want 2", len(got.WarnAuto))
	}
}

func TestSetRejectsDuplicateThresholds(t *testing.T) {
	svc, _ := newTestService()

	config := models.DefaultGuildConfig("guild-1", "$")
	config.WarnAuto = []models.EscalationRule{
		{Count: 3, Action: "kick"},
		{Count: 3, Action: "ban"},
	}

	err := svc.Set(context.Background(), config)
	if !errors.Is(err, ErrDuplicateThreshold) {
		t.Errorf("Set() error = %v, want ErrDuplicateThreshold", err)
	}
}

func TestCacheMissFallsBackToStore(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	config := models.DefaultGuildConfig("guild-1", "$")
	config.MuteRole = "role-mute"
	if err := svc.Set(ctx, config); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}

	// Drop the cached entry; the store copy must still be found
	svc.Invalidate("guild-1")

	got, err := svc.Get(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if got.MuteRole != "role-mute" {
		t.Errorf("MuteRole = %q, want %q", got.MuteRole, "role-mute")
	}
}

func TestSetDoesNotCacheOnStoreFailure(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	store.SetFailing(true)
	config := models.DefaultGuildConfig("guild-1", "$")
	config.ModRole = "role-mod"
	if err := svc.Set(ctx, config); err == nil {
		t.Fatal("Set() should fail when the store is unavailable")
	}
	store.SetFailing(false)

	got, err := svc.Get(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if got.ModRole != "" {
		t.Error("failed write must not populate the cache")
	}
}

func TestGuildLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.OnGuildJoin(ctx, "guild-1"); err != nil {
		t.Fatalf("OnGuildJoin() returned error: %v", err)
	}
	// Joining twice must not fail or reset configuration
	config, _ := svc.Get(ctx, "guild-1")
	config.Prefix = "!"
	if err := svc.Set(ctx, config); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}
	if err := svc.OnGuildJoin(ctx, "guild-1"); err != nil {
		t.Fatalf("second OnGuildJoin() returned error: %v", err)
	}
	got, _ := svc.Get(ctx, "guild-1")
	if got.Prefix != "!" {
		t.Errorf("Prefix after rejoin = %q, want %q", got.Prefix, "!")
	}

	if err := svc.OnGuildRemove(ctx, "guild-1"); err != nil {
		t.Fatalf("OnGuildRemove() returned error: %v", err)
	}
	got, err := svc.Get(ctx, "guild-1")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if got.Prefix != "$" {
		t.Errorf("Prefix after removal = %q, want default %q", got.Prefix, "$")
	}
}

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache(2)

	cache.put("a", models.DefaultGuildConfig("a", "$"))
	cache.put("b", models.DefaultGuildConfig("b", "$"))
	cache.put("c", models.DefaultGuildConfig("c", "$"))

	if cache.len() != 2 {
		t.Errorf("cache len = %d, want 2", cache.len())
	}
	if _, ok := cache.get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := cache.get("c"); !ok {
		t.Error("newest entry should be cached")
	}
}
