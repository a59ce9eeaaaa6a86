package phoneauth

// Decision is what a guarded page should do.
type Decision int

const (
	DecisionPlaceholder Decision = iota
	DecisionRedirect
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionPlaceholder:
		return "placeholder"
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	default:
		return "unknown"
	}
}

type Verdict struct {
	Decision   Decision
	RedirectTo string
}

// DefaultLoginPath is where signed out users are sent.
const DefaultLoginPath = "/login"

// Gate guards pages on the session. It holds no state.
type Gate struct {
	LoginPath string
}

func (g Gate) Evaluate(s SessionState) Verdict {
	switch {
	case s.Loading:
		return Verdict{Decision: DecisionPlaceholder}
	case s.Identity == nil:
		to := g.LoginPath
		if to == "" {
			to = DefaultLoginPath
		}
		return Verdict{Decision: DecisionRedirect, RedirectTo: to}
	default:
		return Verdict{Decision: DecisionRender}
	}
}
