package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// TestDispatchWithoutPermissionBits verifies that the dispatcher never
// rejects an invoker on raw permission bits. A member holding the guild's
// moderator role carries none of the literal bits, yet the handler must
// still run so the moderation pipeline can authorize the action.
func TestDispatchWithoutPermissionBits(t *testing.T) {
	c, err := NewClient("test-token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ran := false
	cmd := NewCommand("warn", "Warn a user", "mod", func(ctx *CommandContext) error {
		ran = true
		return nil
	}).WithUserPermissions(discordgo.PermissionModerateMembers)
	c.Commands.Set("mod.warn", cmd)

	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "guild-1",
			Member: &discordgo.Member{
				User:        &discordgo.User{ID: "user-1", Username: "modrole-holder"},
				Roles:       []string{"mod-role"},
				Permissions: 0,
			},
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "mod",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name: "warn",
						Type: discordgo.ApplicationCommandOptionSubCommand,
					},
				},
			},
		},
	}

	c.handleInteraction(c.Session, i)
	if !ran {
		t.Fatal("handler should run for an invoker without permission bits")
	}
}

// TestDispatchResolvesSubcommandGroups verifies the group.sub name building
func TestDispatchResolvesSubcommandGroups(t *testing.T) {
	c, err := NewClient("test-token")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ran := false
	c.Commands.Set("emoji.add", NewCommand("add", "Add an emoji", "emoji", func(ctx *CommandContext) error {
		ran = true
		return nil
	}))

	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "guild-1",
			Member:  &discordgo.Member{User: &discordgo.User{ID: "user-1"}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "emoji",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name: "add",
						Type: discordgo.ApplicationCommandOptionSubCommand,
					},
				},
			},
		},
	}

	c.handleInteraction(c.Session, i)
	if !ran {
		t.Fatal("emoji.add handler should run")
	}
}
