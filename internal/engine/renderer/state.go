package renderer

// State is the engine lifecycle stage.
type State uint8

const (
	Idle State = iota
	Initializing
	Running
	Paused
	Disposed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Disposed:
		return "disposed"
	}
	return "unknown"
}

// Hooks are optional callbacks around the engine's lifecycle calls.
// Nil entries are skipped.
type Hooks struct {
	BeforeInit    func(*Engine)
	AfterInit     func(*Engine)
	BeforeDisplay func(*Engine)
	AfterDisplay  func(*Engine)
	BeforeReshape func(*Engine)
	AfterReshape  func(*Engine)
}

func (e *Engine) run(hook func(*Engine)) {
	if hook != nil {
		hook(e)
	}
}
