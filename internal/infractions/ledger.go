// Package infractions implements the per-guild warning ledger. Records are
// immutable; the only mutations are targeted or filtered deletion. Sequential
// warn ids come from an atomic counter in the store, so concurrent warnings
// for the same guild never collide.
package infractions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/anurag-krmkr/Parrot/pkg/database"
	"github.com/anurag-krmkr/Parrot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	warnsCollection    = "warns"
	countersCollection = "counters"
)

// Filter narrows ledger queries and deletions. Set fields are ANDed;
// zero-value fields are unconstrained.
type Filter struct {
	TargetID    string
	ModeratorID string
	ChannelID   string
	MessageID   string
	WarnID      int64
}

func (f Filter) toBson(guildID string) bson.M {
	query := bson.M{"guildId": guildID}
	if f.TargetID != "" {
		query["target"] = f.TargetID
	}
	if f.ModeratorID != "" {
		query["moderator"] = f.ModeratorID
	}
	if f.ChannelID != "" {
		query["channel"] = f.ChannelID
	}
	if f.MessageID != "" {
		query["message"] = f.MessageID
	}
	if f.WarnID != 0 {
		query["warn_id"] = f.WarnID
	}
	return query
}

// Ledger provides CRUD and counting over warning records
type Ledger struct {
	store database.Store
}

// NewLedger creates a Ledger on the given store
func NewLedger(store database.Store) *Ledger {
	return &Ledger{store: store}
}

func counterKey(guildID string) string {
	return fmt.Sprintf("warns:%s", guildID)
}

// Add persists a new warning with the next sequential id for the guild.
// A store failure surfaces to the caller; no record means no escalation.
func (l *Ledger) Add(ctx context.Context, guildID, targetID, moderatorID, reason, channelID, messageID string, at time.Time) (*models.WarnRecord, error) {
	id, err := l.store.NextSequence(ctx, countersCollection, counterKey(guildID))
	if err != nil {
		return nil, err
	}

	record := &models.WarnRecord{
		WarnID:      id,
		GuildID:     guildID,
		TargetID:    targetID,
		ModeratorID: moderatorID,
		Reason:      reason,
		ChannelID:   channelID,
		MessageID:   messageID,
		Timestamp:   at.Unix(),
	}

	if err := l.store.InsertOne(ctx, warnsCollection, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a single warning by id. Returns true iff a record existed.
func (l *Ledger) Delete(ctx context.Context, guildID string, warnID int64) (bool, error) {
	return l.store.DeleteOne(ctx, warnsCollection, bson.M{"guildId": guildID, "warn_id": warnID})
}

// DeleteMatching removes every warning matching the filter and returns the
// number removed
func (l *Ledger) DeleteMatching(ctx context.Context, guildID string, filter Filter) (int64, error) {
	return l.store.DeleteMany(ctx, warnsCollection, filter.toBson(guildID))
}

// List returns the warnings matching the filter in chronological order
func (l *Ledger) List(ctx context.Context, guildID string, filter Filter) ([]models.WarnRecord, error) {
	var records []models.WarnRecord
	if err := l.store.Find(ctx, warnsCollection, filter.toBson(guildID), &records); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].WarnID < records[j].WarnID })
	return records, nil
}

// Count returns the number of warnings recorded against a target in a guild
func (l *Ledger) Count(ctx context.Context, guildID, targetID string) (int, error) {
	records, err := l.List(ctx, guildID, Filter{TargetID: targetID})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Purge drops every warning and the id counter for a guild. Called when the
// bot leaves a guild.
func (l *Ledger) Purge(ctx context.Context, guildID string) error {
	if _, err := l.store.DeleteMany(ctx, warnsCollection, bson.M{"guildId": guildID}); err != nil {
		return err
	}
	_, err := l.store.DeleteOne(ctx, countersCollection, bson.M{"_id": counterKey(guildID)})
	return err
}
