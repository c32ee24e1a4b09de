package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionExpression(t *testing.T) {
	c := Condition{Operand1: "amount", Operator: ">", Operand2: "100"}

	assert.Equal(t, "amount > 100", c.Expression())
}

func TestConditionGroupExpression(t *testing.T) {
	g := ConditionGroup{
		Conditions: []*Condition{
			{Operand1: "1", Operator: "==", Operand2: "1"},
			{Operand1: "2", Operator: ">", Operand2: "3"},
		},
	}

	assert.Equal(t, "1 == 1 || 2 > 3", g.Expression())
}

func TestRenderConditionExpression(t *testing.T) {
	tests := []struct {
		name     string
		groups   []*ConditionGroup
		expected string
	}{
		{
			name:     "no groups",
			groups:   nil,
			expected: "",
		},
		{
			name: "single group single condition",
			groups: []*ConditionGroup{
				{Conditions: []*Condition{{Operand1: "a", Operator: "==", Operand2: "1"}}},
			},
			expected: "(a == 1)",
		},
		{
			name: "groups are AND-joined, conditions OR-joined",
			groups: []*ConditionGroup{
				{Conditions: []*Condition{
					{Operand1: "1", Operator: "==", Operand2: "1"},
					{Operand1: "2", Operator: "==", Operand2: "2"},
				}},
				{Conditions: []*Condition{{Operand1: "3", Operator: "<", Operand2: "4"}}},
			},
			expected: "(1 == 1 || 2 == 2) && (3 < 4)",
		},
		{
			name: "empty group skipped",
			groups: []*ConditionGroup{
				{},
				{Conditions: []*Condition{{Operand1: "a", Operator: "!=", Operand2: "b"}}},
			},
			expected: "(a != b)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderConditionExpression(tt.groups))
		})
	}
}
