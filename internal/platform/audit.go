package platform

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
)

// embed colors for the action log
const (
	colorModerator = 0xE74C3C
	colorAutomated = 0xF39C12
	colorFailed    = 0x95A5A6
)

// AuditLog posts audit entries as embeds in the guild's action-log channel
type AuditLog struct {
	session *discordgo.Session
}

// NewAuditLog wraps the session
func NewAuditLog(session *discordgo.Session) *AuditLog {
	return &AuditLog{session: session}
}

// SendAudit implements moderation.AuditSender
func (a *AuditLog) SendAudit(ctx context.Context, channelID string, entry moderation.AuditEntry) error {
	color := colorModerator
	footer := "Moderator action"
	if entry.Automated {
		color = colorAutomated
		footer = "Automated action"
	}
	if !entry.Success {
		color = colorFailed
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Action: %s", entry.Command),
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Target", Value: fmt.Sprintf("%s (`%s`)", entry.Target, entry.TargetID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("%s (`%s`)", entry.ActorName, entry.ActorID), Inline: true},
			{Name: "Reason", Value: entry.Reason},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s | %s", footer, entry.ID)},
		Timestamp: entry.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
	if entry.Detail != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Detail", Value: entry.Detail})
	}
	if !entry.Success {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Result", Value: fmt.Sprintf("Failed: %s", entry.Failure)})
	}

	_, err := a.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}
