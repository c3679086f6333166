package events

import (
	"github.com/anurag-krmkr/Parrot/internal/automod"
	"github.com/anurag-krmkr/Parrot/internal/guildconfig"
	"github.com/anurag-krmkr/Parrot/internal/infractions"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
	"github.com/anurag-krmkr/Parrot/pkg/logger"
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, configs *guildconfig.Service, ledger *infractions.Ledger, filter *automod.Filter) {
	logger.System("📋 Registering bot events...", "Events")

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (join seeds config, leave purges guild data)
	RegisterGuildEvents(client, configs, ledger)

	// Message events (profanity automod on create/edit)
	RegisterMessageEvents(client, configs, filter)

	logger.Success("✅ All events registered", "Events")
}
