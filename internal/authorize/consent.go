package authorize

import (
	"fmt"

	"github.com/intrafind/ihub-apps-sub004/internal/client"
)

// Decision is the outcome of the consent policy for an authenticated request.
type Decision int

const (
	// DecisionPrompt renders the consent screen.
	DecisionPrompt Decision = iota
	// DecisionBypass issues a code without asking: the client is trusted or
	// does not require consent.
	DecisionBypass
	// DecisionRemembered issues a code because the user already granted every
	// requested scope within the consent memory window.
	DecisionRemembered
)

func (d Decision) String() string {
	switch d {
	case DecisionPrompt:
		return "prompt"
	case DecisionBypass:
		return "bypass"
	case DecisionRemembered:
		return "remembered"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// decide evaluates the consent policy. hasConsent is only called when the
// answer depends on it. forcePrompt (prompt=consent) skips remembered consent
// but never the bypass of trusted clients.
func decide(c *client.Client, forcePrompt bool, hasConsent func() (bool, error)) (Decision, error) {
	if c.Trusted || !c.ConsentRequired {
		return DecisionBypass, nil
	}
	if forcePrompt {
		return DecisionPrompt, nil
	}
	ok, err := hasConsent()
	if err != nil {
		return DecisionPrompt, err
	}
	if ok {
		return DecisionRemembered, nil
	}
	return DecisionPrompt, nil
}
