package discord

import (
	"fmt"
	"strings"
)

// Component custom ids have the form "<kind>:<action>:<id>".
const (
	kindChallenge = "challenge"
	kindReport    = "report"

	actionAccept  = "accept"
	actionDecline = "decline"
	actionWin     = "win"
	actionLoss    = "loss"
)

type componentID struct {
	Kind   string
	Action string
	ID     string
}

func (c componentID) String() string {
	return c.Kind + ":" + c.Action + ":" + c.ID
}

func parseComponentID(raw string) (componentID, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return componentID{}, fmt.Errorf("malformed component id %q", raw)
	}
	c := componentID{Kind: parts[0], Action: parts[1], ID: parts[2]}
	switch {
	case c.Kind == kindChallenge && (c.Action == actionAccept || c.Action == actionDecline):
	case c.Kind == kindReport && (c.Action == actionWin || c.Action == actionLoss):
	default:
		return componentID{}, fmt.Errorf("unknown component id %q", raw)
	}
	return c, nil
}
