// Package shortcut turns keyboard commands into bar switches.
package shortcut

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/barswitch/pkg/tree"
)

// MaxSlot is the highest N accepted by switch-to-N.
const MaxSlot = 10

// ErrUnknownCommand is returned by ParseCommand.
var ErrUnknownCommand = errors.New("shortcut: unknown command")

// Kind is the kind of a Command.
type Kind int

const (
	Next Kind = iota
	Previous
	SwitchTo
)

// Command is a parsed keyboard command. N is 1-based and only set for
// SwitchTo.
type Command struct {
	Kind Kind
	N    int
}

const switchPrefix = "switch-to-"

// ParseCommand parses next-bar, previous-bar and switch-to-N.
func ParseCommand(name string) (Command, error) {
	switch name = strings.TrimSpace(name); name {
	case "next-bar":
		return Command{Kind: Next}, nil
	case "previous-bar":
		return Command{Kind: Previous}, nil
	}
	if rest, ok := strings.CutPrefix(name, switchPrefix); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 1 && n <= MaxSlot {
			return Command{Kind: SwitchTo, N: n}, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// Names lists every command name ParseCommand accepts.
func Names() []string {
	out := []string{Command{Kind: Next}.String(), Command{Kind: Previous}.String()}
	for n := 1; n <= MaxSlot; n++ {
		out = append(out, Command{Kind: SwitchTo, N: n}.String())
	}
	return out
}

func (c Command) String() string {
	switch c.Kind {
	case Next:
		return "next-bar"
	case Previous:
		return "previous-bar"
	default:
		return switchPrefix + strconv.Itoa(c.N)
	}
}

// Target picks the bar cmd switches to. bars are in tree order and activeID
// is the bar in the visible slot. switch-to-N past the end picks the first
// bar; next and previous wrap. It reports false when there are no bars.
func Target(bars []tree.Node, activeID string, cmd Command) (tree.Node, bool) {
	if len(bars) == 0 {
		return tree.Node{}, false
	}
	if cmd.Kind == SwitchTo {
		if cmd.N >= 1 && cmd.N <= len(bars) {
			return bars[cmd.N-1], true
		}
		return bars[0], true
	}

	cur := -1
	for i, b := range bars {
		if b.ID == activeID {
			cur = i
			break
		}
	}
	n := len(bars)
	switch {
	case cur < 0 && cmd.Kind == Next:
		return bars[0], true
	case cur < 0:
		return bars[n-1], true
	case cmd.Kind == Next:
		return bars[(cur+1)%n], true
	default:
		return bars[(cur-1+n)%n], true
	}
}
