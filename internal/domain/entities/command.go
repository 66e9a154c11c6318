package entities

import (
	"strconv"
	"strings"
)

// Actions understood by the embedded player
const (
	ActionPlay      = "playVideo"
	ActionPause     = "pauseVideo"
	ActionSeekTo    = "seekTo"
	ActionSetVolume = "setVolume"
	ActionMute      = "mute"
	ActionUnmute    = "unMute"
)

// Command is a single instruction for the embedded video surface
type Command struct {
	Func string    `json:"func"`
	Args []float64 `json:"args,omitempty"`
}

// NewCommand creates a command for action with optional numeric arguments
func NewCommand(action string, args ...float64) Command {
	cmd := Command{Func: action}
	if len(args) > 0 {
		cmd.Args = append([]float64(nil), args...)
	}
	return cmd
}

// String renders the command as func[,arg...], e.g. "seekTo,210"
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Func
	}
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Func)
	for _, a := range c.Args {
		parts = append(parts, strconv.FormatFloat(a, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// CommandMessage is the structured envelope posted to the embed.
// TargetOrigin is the only origin the relay may post it to.
type CommandMessage struct {
	Event        string    `json:"event"`
	Func         string    `json:"func"`
	Args         []float64 `json:"args,omitempty"`
	TargetOrigin string    `json:"target_origin"`
}

// NewCommandMessage wraps cmd for delivery to targetOrigin
func NewCommandMessage(cmd Command, targetOrigin string) CommandMessage {
	return CommandMessage{
		Event:        "command",
		Func:         cmd.Func,
		Args:         cmd.Args,
		TargetOrigin: targetOrigin,
	}
}

// Command returns the command carried by the message
func (m CommandMessage) Command() Command {
	return Command{Func: m.Func, Args: m.Args}
}

// NormalizeOrigin lowercases an origin and drops any trailing slash so
// origins from config, query strings and headers compare equal
func NormalizeOrigin(origin string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
}
