// Package models contains the document types persisted in MongoDB.
package models

// EscalationRule maps a warning-count threshold to an automated action.
// Duration is optional and only meaningful for timed actions (timeout, tempban).
type EscalationRule struct {
	Count    int    `bson:"count" json:"count"`
	Action   string `bson:"action" json:"action"`
	Duration int64  `bson:"duration,omitempty" json:"duration,omitempty"` // seconds
}

// AutoWarnConfig controls the automated warning issued by automod hits
type AutoWarnConfig struct {
	Enabled       bool `bson:"enable" json:"enable"`
	DeleteMessage bool `bson:"to_delete" json:"to_delete"`
}

// ProfanityConfig holds per-guild profanity enforcement settings
type ProfanityConfig struct {
	Enabled         bool           `bson:"enable" json:"enable"`
	Words           []string       `bson:"words" json:"words"`
	IgnoredChannels []string       `bson:"channel" json:"channel"`
	AutoWarn        AutoWarnConfig `bson:"autowarn" json:"autowarn"`
}

// AutomodConfig groups automated moderation settings
type AutomodConfig struct {
	Profanity ProfanityConfig `bson:"profanity" json:"profanity"`
}

// LevelingConfig holds per-guild leveling settings. Kept as an opaque blob;
// the leveling module owns its shape.
type LevelingConfig struct {
	Enabled bool   `bson:"enable" json:"enable"`
	Channel string `bson:"channel,omitempty" json:"channel,omitempty"`
}

// GuildConfig is the single per-guild configuration document in the
// "server_config" collection. Created with defaults when the bot joins a
// guild, removed (with all per-guild collections) when it leaves.
type GuildConfig struct {
	GuildID   string           `bson:"_id" json:"guildId"`
	Prefix    string           `bson:"prefix" json:"prefix"`
	ModRole   string           `bson:"mod_role,omitempty" json:"modRole,omitempty"`
	ActionLog string           `bson:"action_log,omitempty" json:"actionLog,omitempty"`
	MuteRole  string           `bson:"mute_role,omitempty" json:"muteRole,omitempty"`
	WarnAuto  []EscalationRule `bson:"warn_auto,omitempty" json:"warnAuto,omitempty"`
	Automod   AutomodConfig    `bson:"automod,omitempty" json:"automod,omitempty"`
	Leveling  LevelingConfig   `bson:"leveling,omitempty" json:"leveling,omitempty"`
}

// DefaultGuildConfig returns the document inserted on first guild join
func DefaultGuildConfig(guildID, prefix string) *GuildConfig {
	return &GuildConfig{
		GuildID: guildID,
		Prefix:  prefix,
	}
}
