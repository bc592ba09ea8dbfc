package powermenu

// Inputs carries the values read for one recomputation.
type Inputs struct {
	State      LockState
	Preference int
	Component  string
}

// PowerMenuDisabled reports whether the stored preference explicitly disables
// the power menu on the lock screen. Only 0 disables it.
func (in Inputs) PowerMenuDisabled() bool {
	return in.Preference == 0
}

func (in Inputs) bindings() map[string]any {
	return map[string]any{
		"unlocked":            in.State.Unlocked,
		"locked":              !in.State.Unlocked,
		"secure":              in.State.SecureMethod,
		"power_menu":          int64(in.Preference),
		"power_menu_disabled": in.PowerMenuDisabled(),
		"component":           in.Component,
	}
}

// Policy decides visibility from a set of inputs.
type Policy interface {
	Visible(Inputs) (bool, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(Inputs) (bool, error)

// Visible implements Policy.
func (f PolicyFunc) Visible(in Inputs) (bool, error) {
	return f(in)
}

// DefaultPolicy hides the affordance only when the device is locked with a
// secure method and the user disabled the power menu on the lock screen.
var DefaultPolicy Policy = PolicyFunc(func(in Inputs) (bool, error) {
	hide := !in.State.Unlocked && in.State.SecureMethod && in.PowerMenuDisabled()
	return !hide, nil
})
