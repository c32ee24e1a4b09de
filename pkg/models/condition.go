package models

import (
	"fmt"
	"strings"
	"time"
)

// Condition is a single stored comparison. Operands are raw strings; they may
// be literals or variable references resolved by the expression evaluator.
type Condition struct {
	ID        string    `json:"id"         validate:"required"`
	GroupID   string    `json:"group_id"   validate:"required"`
	Operand1  string    `json:"operand1"   validate:"required"`
	Operator  string    `json:"operator"   validate:"required"`
	Operand2  string    `json:"operand2"   validate:"required"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expression renders the condition in the textual form consumed by the
// expression evaluator: "{operand1} {operator} {operand2}".
func (c *Condition) Expression() string {
	return fmt.Sprintf("%s %s %s", c.Operand1, c.Operator, c.Operand2)
}

// ConditionGroup is an OR-group of conditions attached to a node. Groups of a
// node combine with AND, conditions inside a group with OR, both in SortOrder.
type ConditionGroup struct {
	ID         string       `json:"id"         validate:"required"`
	NodeID     string       `json:"node_id"    validate:"required"`
	SortOrder  int          `json:"sort_order"`
	Conditions []*Condition `json:"conditions"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Expression renders the group's conditions OR-joined.
func (g *ConditionGroup) Expression() string {
	parts := make([]string, 0, len(g.Conditions))
	for _, c := range g.Conditions {
		parts = append(parts, c.Expression())
	}

	return strings.Join(parts, " || ")
}

// RenderConditionExpression renders a node's condition groups as one boolean
// expression: each group's conditions are OR-joined, wrapped in parentheses,
// and the groups are AND-joined, e.g. "(c1 || c2) && (c3)". An empty input
// renders as the empty string, which the engine treats as "no conditions".
func RenderConditionExpression(groups []*ConditionGroup) string {
	wrapped := make([]string, 0, len(groups))

	for _, g := range groups {
		if len(g.Conditions) == 0 {
			continue
		}

		wrapped = append(wrapped, fmt.Sprintf("(%s)", g.Expression()))
	}

	return strings.Join(wrapped, " && ")
}
