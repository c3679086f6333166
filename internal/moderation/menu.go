package moderation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// MenuState tracks where an interactive moderation menu is in its lifecycle
type MenuState int

const (
	MenuAwaitingChoice MenuState = iota
	MenuAwaitingFollowup
	MenuDone
	MenuTimedOut
)

func (s MenuState) String() string {
	switch s {
	case MenuAwaitingChoice:
		return "awaiting_choice"
	case MenuAwaitingFollowup:
		return "awaiting_followup"
	case MenuDone:
		return "done"
	case MenuTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// menuWaitTimeout is how long each prompt waits for the moderator before
// the menu aborts silently.
const menuWaitTimeout = 60 * time.Second

// MenuPrompter is the interaction surface of the menu: it shows prompts and
// waits for the invoking moderator's responses. ok is false on timeout.
type MenuPrompter interface {
	ShowChoices(ctx context.Context, choices []MenuChoice) error
	AwaitChoice(ctx context.Context, timeout time.Duration) (key string, ok bool)
	AskFollowup(ctx context.Context, prompt string, timeout time.Duration) (string, bool)
	ShowOutcome(ctx context.Context, outcome Outcome) error
}

// MenuChoice is one selectable action in the menu
type MenuChoice struct {
	Key   string
	Kind  ActionKind
	Label string
}

// followupKind describes what extra input a chosen action needs
type followupKind int

const (
	followupNone followupKind = iota
	followupReason
	followupDuration
)

// defaultMenuChoices is the action set offered for a member target
var defaultMenuChoices = []MenuChoice{
	{Key: "1", Kind: ActionWarn, Label: "Warn"},
	{Key: "2", Kind: ActionTimeout, Label: "Timeout"},
	{Key: "3", Kind: ActionKick, Label: "Kick"},
	{Key: "4", Kind: ActionMute, Label: "Mute"},
	{Key: "5", Kind: ActionBan, Label: "Ban"},
}

// Menu is one interactive moderation session: a moderator opened the menu on
// a target, picks an action, optionally supplies a reason or duration, and
// the pipeline runs. Timing out at any prompt abandons the session with no
// action taken.
type Menu struct {
	service  *Service
	prompter MenuPrompter
	choices  []MenuChoice
	state    MenuState
}

// NewMenu builds a menu session over the default action set
func NewMenu(service *Service, prompter MenuPrompter) *Menu {
	return &Menu{
		service:  service,
		prompter: prompter,
		choices:  defaultMenuChoices,
		state:    MenuAwaitingChoice,
	}
}

// State reports the session's current lifecycle state
func (m *Menu) State() MenuState {
	return m.state
}

func (m *Menu) choiceFor(key string) *MenuChoice {
	for i := range m.choices {
		if m.choices[i].Key == key {
			return &m.choices[i]
		}
	}
	return nil
}

func followupFor(kind ActionKind) followupKind {
	switch kind {
	case ActionTimeout, ActionTempban:
		return followupDuration
	case ActionWarn, ActionKick, ActionBan, ActionMute:
		return followupReason
	default:
		return followupNone
	}
}

// Run drives the session to completion. The base request carries the guild,
// actor, bot and target; the menu fills in the kind and parameters. The
// returned outcome is nil when the session timed out.
func (m *Menu) Run(ctx context.Context, base Request) *Outcome {
	if err := m.prompter.ShowChoices(ctx, m.choices); err != nil {
		m.state = MenuDone
		return nil
	}

	key, ok := m.prompter.AwaitChoice(ctx, menuWaitTimeout)
	if !ok {
		m.state = MenuTimedOut
		return nil
	}
	choice := m.choiceFor(key)
	if choice == nil {
		m.state = MenuDone
		return nil
	}

	req := base
	req.Kind = choice.Kind

	switch followupFor(choice.Kind) {
	case followupReason:
		m.state = MenuAwaitingFollowup
		reason, ok := m.prompter.AskFollowup(ctx, "Reason?", menuWaitTimeout)
		if !ok {
			m.state = MenuTimedOut
			return nil
		}
		req.Reason = strings.TrimSpace(reason)
	case followupDuration:
		m.state = MenuAwaitingFollowup
		raw, ok := m.prompter.AskFollowup(ctx, "Duration in minutes?", menuWaitTimeout)
		if !ok {
			m.state = MenuTimedOut
			return nil
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || minutes <= 0 {
			m.state = MenuDone
			return nil
		}
		until := time.Now().Add(time.Duration(minutes) * time.Minute)
		req.Params.Until = &until
	}

	var outcome Outcome
	if choice.Kind == ActionWarn {
		res, err := m.service.IssueWarning(ctx, req)
		if err != nil {
			var denied *DeniedError
			if errors.As(err, &denied) {
				outcome = failure(ActionWarn, req.Target, denied.Reason, "")
			} else {
				outcome = failure(ActionWarn, req.Target, FailurePlatformRejected, err.Error())
			}
		} else {
			outcome = success(ActionWarn, req.Target)
			if res.Escalation != nil {
				outcome.Detail = "escalated to " + string(res.Escalation.Kind)
			}
		}
	} else {
		outcome = m.service.Moderate(ctx, req)
	}

	m.state = MenuDone
	_ = m.prompter.ShowOutcome(ctx, outcome)
	return &outcome
}
