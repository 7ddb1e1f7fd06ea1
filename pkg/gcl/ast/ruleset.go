package ast

// RuleSet is a parsed GCL rule file: top-level let bindings in file order
// plus the rules that share them.
type RuleSet struct {
	// SourceFile is the path the rule set was parsed from (empty for
	// in-memory rule sets).
	SourceFile string

	// Lets are the top-level bindings, in file order. They are established
	// before any rule is evaluated, so every rule sees every binding
	// regardless of declaration position.
	Lets []*LetStatement

	// Rules in declaration order. Evaluation order follows this order.
	Rules []*Rule
}

// Rule returns the rule with the given name, or nil if not present.
func (rs *RuleSet) Rule(name string) *Rule {
	for _, r := range rs.Rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Binding returns the top-level let statement for name, or nil.
func (rs *RuleSet) Binding(name string) *LetStatement {
	for _, l := range rs.Lets {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// RuleNames returns the names of all rules in declaration order.
func (rs *RuleSet) RuleNames() []string {
	names := make([]string, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		names = append(names, r.Name)
	}
	return names
}
