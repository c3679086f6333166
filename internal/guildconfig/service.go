// Package guildconfig manages the per-guild configuration document: command
// prefix, moderator role, action-log channel, mute role, the warning
// escalation table and automod settings. Reads go through a bounded LRU
// cache; writes hit the store first and then refresh the cache.
package guildconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/anurag-krmkr/Parrot/pkg/database"
	"github.com/anurag-krmkr/Parrot/pkg/logger"
	"github.com/anurag-krmkr/Parrot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

const configCollection = "server_config"

// ErrDuplicateThreshold is returned when an escalation table contains two
// rules for the same warning count.
var ErrDuplicateThreshold = errors.New("duplicate escalation threshold")

// Service provides cached access to guild configuration
type Service struct {
	store         database.Store
	cache         *lruCache
	defaultPrefix string
}

// NewService creates a config service with the given cache capacity
func NewService(store database.Store, defaultPrefix string, cacheSize int) *Service {
	if defaultPrefix == "" {
		defaultPrefix = "$"
	}
	return &Service{
		store:         store,
		cache:         newLRUCache(cacheSize),
		defaultPrefix: defaultPrefix,
	}
}

// Get returns the guild's configuration. A cache miss falls back to the
// store; a guild with no stored document gets in-memory defaults.
func (s *Service) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	if config, ok := s.cache.get(guildID); ok {
		return config, nil
	}

	var config models.GuildConfig
	err := s.store.FindOne(ctx, configCollection, bson.M{"_id": guildID}, &config)
	if errors.Is(err, database.ErrNotFound) {
		return models.DefaultGuildConfig(guildID, s.defaultPrefix), nil
	}
	if err != nil {
		return nil, err
	}

	s.cache.put(guildID, &config)
	return &config, nil
}

// Set persists the full configuration document, then updates the cache.
// The cache is never written before the store succeeds.
func (s *Service) Set(ctx context.Context, config *models.GuildConfig) error {
	if err := validateEscalation(config.WarnAuto); err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"prefix":     config.Prefix,
		"mod_role":   config.ModRole,
		"action_log": config.ActionLog,
		"mute_role":  config.MuteRole,
		"warn_auto":  config.WarnAuto,
		"automod":    config.Automod,
		"leveling":   config.Leveling,
	}}
	if err := s.store.UpdateOne(ctx, configCollection, bson.M{"_id": config.GuildID}, update, true); err != nil {
		return err
	}

	s.cache.put(config.GuildID, config)
	return nil
}

// SetEscalation replaces the guild's escalation table
func (s *Service) SetEscalation(ctx context.Context, guildID string, rules []models.EscalationRule) error {
	config, err := s.Get(ctx, guildID)
	if err != nil {
		return err
	}
	config.WarnAuto = rules
	return s.Set(ctx, config)
}

// Invalidate drops the cached entry so the next read hits the store
func (s *Service) Invalidate(guildID string) {
	s.cache.remove(guildID)
}

// OnGuildJoin inserts the default configuration document. Idempotent: an
// existing document is left untouched.
func (s *Service) OnGuildJoin(ctx context.Context, guildID string) error {
	var existing models.GuildConfig
	err := s.store.FindOne(ctx, configCollection, bson.M{"_id": guildID}, &existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	config := models.DefaultGuildConfig(guildID, s.defaultPrefix)
	if err := s.store.InsertOne(ctx, configCollection, config); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Created default config for guild %s", guildID), "GuildConfig")
	return nil
}

// OnGuildRemove deletes the configuration document and evicts the cache
// entry. Per-guild warning data is purged by the caller via the ledger.
func (s *Service) OnGuildRemove(ctx context.Context, guildID string) error {
	s.cache.remove(guildID)
	_, err := s.store.DeleteOne(ctx, configCollection, bson.M{"_id": guildID})
	return err
}

// validateEscalation enforces at most one rule per distinct threshold
func validateEscalation(rules []models.EscalationRule) error {
	seen := make(map[int]bool, len(rules))
	for _, rule := range rules {
		if seen[rule.Count] {
			return fmt.Errorf("%w: %d", ErrDuplicateThreshold, rule.Count)
		}
		seen[rule.Count] = true
	}
	return nil
}
