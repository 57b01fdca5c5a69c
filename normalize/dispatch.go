package normalize

// Rule transforms a single tag value.
type Rule func(value string) string

type dispatchRule struct {
	match func(key string) bool
	apply Rule
}

func keyIs(keys ...string) func(string) bool {
	return func(key string) bool {
		for _, k := range keys {
			if k == key {
				return true
			}
		}
		return false
	}
}

// RuleFor returns the rule for tag key. The rules are checked in order
// street name, house number, phone and the first match is returned.
func (r *Rules) RuleFor(key string) (Rule, bool) {
	for _, d := range r.dispatch {
		if d.match(key) {
			return d.apply, true
		}
	}
	return nil, false
}

// Value returns value normalized with the rule for key. Values of keys
// without a rule are returned unchanged.
func (r *Rules) Value(key, value string) string {
	rule, ok := r.RuleFor(key)
	if !ok {
		return value
	}
	return rule(value)
}
