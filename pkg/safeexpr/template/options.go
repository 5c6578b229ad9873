package template

// MissingAction specifies how to handle placeholders that refer to a name
// or key the scope does not have.
type MissingAction int

const (
	// MissingKeep keeps the placeholder as-is. This is the default.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the placeholder with an empty string.
	MissingEmpty

	// MissingError fails the expansion with a *PlaceholderError.
	MissingError
)

// String returns the action name.
func (a MissingAction) String() string {
	switch a {
	case MissingKeep:
		return "keep"
	case MissingEmpty:
		return "empty"
	case MissingError:
		return "error"
	default:
		return "unknown"
	}
}

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how missing names and keys are handled.
//
// Example:
//
//	exp := NewExpander(engine, WithMissingAction(MissingError))
//	_, err := exp.Expand(ctx, "${missing}", nil)
//	// err: placeholder ${missing} at offset 0: undefined_name: ...
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) {
		e.missingAction = action
	}
}
