package models

// WarnRecord is a single warning in the "warns" collection. Records are
// immutable once written; corrections are modeled as delete + re-add.
// WarnID is sequential per guild, assigned from the "counters" collection
// with an atomic find-and-modify increment.
type WarnRecord struct {
	WarnID      int64  `bson:"warn_id" json:"warnId"`
	GuildID     string `bson:"guildId" json:"guildId"`
	TargetID    string `bson:"target" json:"target"`
	ModeratorID string `bson:"moderator" json:"moderator"`
	Reason      string `bson:"reason" json:"reason"`
	ChannelID   string `bson:"channel,omitempty" json:"channel,omitempty"`
	MessageID   string `bson:"message,omitempty" json:"message,omitempty"`
	Timestamp   int64  `bson:"timestamp" json:"timestamp"`
}

// Counter backs per-guild sequence generation
type Counter struct {
	ID  string `bson:"_id" json:"id"`
	Seq int64  `bson:"seq" json:"seq"`
}
