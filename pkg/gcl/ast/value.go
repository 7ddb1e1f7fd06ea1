package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType represents the type of a literal value in a GCL rule.
// GCL has no automatic coercion: comparing values of different types is
// always unequal, never an error.
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeNull    ValueType = "null"
	ValueTypeSet     ValueType = "set" // [v1, v2, ...] literal for in / not in
)

// ValueNode represents a literal value in the AST (comparison operands,
// set members, filter operands).
type ValueNode struct {
	Type     ValueType
	Value    interface{}  // string, float64, bool, or nil
	Items    []*ValueNode // Set members (only for ValueTypeSet)
	Location Location
}

// IsSet returns true if this value is a set literal.
func (v *ValueNode) IsSet() bool {
	return v.Type == ValueTypeSet
}

// String returns the GCL source representation of the value.
func (v *ValueNode) String() string {
	switch v.Type {
	case ValueTypeString:
		return fmt.Sprintf("%q", v.Value)
	case ValueTypeNumber:
		return strconv.FormatFloat(v.Value.(float64), 'f', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Value.(bool))
	case ValueTypeNull:
		return "null"
	case ValueTypeSet:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "<invalid>"
}
