package platform

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/anurag-krmkr/Parrot/internal/moderation"
)

// Prompter drives one interactive moderation menu in a channel: it posts the
// choice list and waits for replies from the invoking moderator.
type Prompter struct {
	session   *discordgo.Session
	channelID string
	userID    string // only this moderator's replies count
}

// NewPrompter builds a prompter bound to a channel and the invoking moderator
func NewPrompter(session *discordgo.Session, channelID, userID string) *Prompter {
	return &Prompter{session: session, channelID: channelID, userID: userID}
}

// ShowChoices posts the numbered action list
func (p *Prompter) ShowChoices(ctx context.Context, choices []moderation.MenuChoice) error {
	var b strings.Builder
	b.WriteString("**Moderation menu** - reply with a number:\n")
	for _, c := range choices {
		b.WriteString(c.Key)
		b.WriteString(". ")
		b.WriteString(c.Label)
		b.WriteString("\n")
	}
	_, err := p.session.ChannelMessageSend(p.channelID, b.String(), discordgo.WithContext(ctx))
	return err
}

// AwaitChoice waits for the moderator's next message in the channel
func (p *Prompter) AwaitChoice(ctx context.Context, timeout time.Duration) (string, bool) {
	return p.awaitMessage(ctx, timeout)
}

// AskFollowup posts the follow-up question and waits for the reply
func (p *Prompter) AskFollowup(ctx context.Context, prompt string, timeout time.Duration) (string, bool) {
	if _, err := p.session.ChannelMessageSend(p.channelID, prompt, discordgo.WithContext(ctx)); err != nil {
		return "", false
	}
	return p.awaitMessage(ctx, timeout)
}

// ShowOutcome reports the final result to the channel
func (p *Prompter) ShowOutcome(ctx context.Context, outcome moderation.Outcome) error {
	text := "Done: " + string(outcome.Kind)
	if !outcome.Success {
		text = "Failed: " + string(outcome.Failure)
		if outcome.Detail != "" {
			text += " (" + outcome.Detail + ")"
		}
	} else if outcome.Detail != "" {
		text += " (" + outcome.Detail + ")"
	}
	_, err := p.session.ChannelMessageSend(p.channelID, text, discordgo.WithContext(ctx))
	return err
}

// awaitMessage blocks until the moderator posts in the channel, the timeout
// elapses, or the context ends.
func (p *Prompter) awaitMessage(ctx context.Context, timeout time.Duration) (string, bool) {
	replies := make(chan string, 1)

	remove := p.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.ChannelID != p.channelID || m.Author == nil || m.Author.ID != p.userID {
			return
		}
		select {
		case replies <- m.Content:
		default:
		}
	})
	defer remove()

	select {
	case content := <-replies:
		return strings.TrimSpace(content), true
	case <-time.After(timeout):
		return "", false
	case <-ctx.Done():
		return "", false
	}
}
