package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// TestCommandCreation verifies that commands can be created with the builder pattern
func TestCommandCreation(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("ban", "Ban a user", "mod", handler)

	if cmd == nil {
		t.Fatal("NewCommand returned nil")
	}

	if cmd.Name != "ban" {
		t.Errorf("Name = %v, want %v", cmd.Name, "ban")
	}

	if cmd.Description != "Ban a user" {
		t.Errorf("Description = %v, want %v", cmd.Description, "Ban a user")
	}

	if cmd.Category != "mod" {
		t.Errorf("Category = %v, want %v", cmd.Category, "mod")
	}

	if cmd.Run == nil {
		t.Error("Run function is nil")
	}
}

// TestCommandWithOptions verifies the WithOptions builder method
func TestCommandWithOptions(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "The user to act on",
		Required:    true,
	}

	cmd := NewCommand("kick", "Kick a user", "mod", handler).
		WithOptions(option)

	if cmd.Options == nil {
		t.Fatal("Options is nil")
	}

	if len(cmd.Options) != 1 {
		t.Fatalf("Options length = %v, want %v", len(cmd.Options), 1)
	}

	if cmd.Options[0].Name != "user" {
		t.Errorf("Option name = %v, want %v", cmd.Options[0].Name, "user")
	}
}

// TestCommandWithPermissions verifies the permission builder methods
func TestCommandWithPermissions(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	cmd := NewCommand("ban", "Ban a user", "mod", handler).
		WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers)

	if cmd.UserPermissions != discordgo.PermissionBanMembers {
		t.Errorf("UserPermissions = %v, want %v", cmd.UserPermissions, discordgo.PermissionBanMembers)
	}

	if cmd.BotPermissions != discordgo.PermissionBanMembers {
		t.Errorf("BotPermissions = %v, want %v", cmd.BotPermissions, discordgo.PermissionBanMembers)
	}
}

// TestToApplicationCommand verifies conversion to Discord application command
func TestToApplicationCommand(t *testing.T) {
	handler := func(ctx *CommandContext) error {
		return nil
	}

	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Why",
		Required:    false,
	}

	cmd := NewCommand("warn", "Warn a user", "mod", handler).
		WithOptions(option)

	appCmd := cmd.ToApplicationCommand()

	if appCmd == nil {
		t.Fatal("ToApplicationCommand returned nil")
	}

	if appCmd.Name != "warn" {
		t.Errorf("ApplicationCommand Name = %v, want %v", appCmd.Name, "warn")
	}

	if len(appCmd.Options) != 1 {
		t.Fatalf("ApplicationCommand Options length = %v, want %v", len(appCmd.Options), 1)
	}
}

// TestCommandCollection verifies the thread-safe command registry
func TestCommandCollection(t *testing.T) {
	cc := NewCommandCollection()
	handler := func(ctx *CommandContext) error { return nil }

	cc.Set("mod.ban", NewCommand("ban", "Ban a user", "mod", handler))
	cc.Set("mod.kick", NewCommand("kick", "Kick a user", "mod", handler))

	if cc.Size() != 2 {
		t.Fatalf("Size = %d, want 2", cc.Size())
	}

	if _, ok := cc.Get("mod.ban"); !ok {
		t.Error("mod.ban should be registered")
	}

	if _, ok := cc.Get("mod.nuke"); ok {
		t.Error("mod.nuke should not be registered")
	}

	all := cc.All()
	if len(all) != 2 {
		t.Errorf("All() length = %d, want 2", len(all))
	}
}
