package projector

// Binding classifies an attribute by the sigils around its name.
type Binding int

const (
	BindingPlain Binding = iota
	// BindingLocal is #name, declaring a template local.
	BindingLocal
	// BindingEvent is (name).
	BindingEvent
	// BindingProperty is [name].
	BindingProperty
	// BindingDirective is *name.
	BindingDirective
)

func (b Binding) String() string {
	switch b {
	case BindingLocal:
		return "local"
	case BindingEvent:
		return "event"
	case BindingProperty:
		return "property"
	case BindingDirective:
		return "directive"
	}
	return "plain"
}

// ParseBinding returns the binding kind of an attribute name and the name
// with its sigils removed.
func ParseBinding(name string) (Binding, string) {
	if len(name) < 2 {
		return BindingPlain, name
	}
	switch name[0] {
	case '#':
		return BindingLocal, name[1:]
	case '*':
		return BindingDirective, name[1:]
	case '(':
		if name[len(name)-1] == ')' && len(name) > 2 {
			return BindingEvent, name[1 : len(name)-1]
		}
	case '[':
		if name[len(name)-1] == ']' && len(name) > 2 {
			return BindingProperty, name[1 : len(name)-1]
		}
	}
	return BindingPlain, name
}
