// Package diagram renders a workflow's node graph as a mermaid flowchart.
package diagram

import (
	"sort"

	"github.com/platine-go/workflow/pkg/models"
)

// NodeKind selects the visual shape and style of a rendered node.
type NodeKind string

const (
	KindStart    NodeKind = "start"
	KindEnd      NodeKind = "end"
	KindUser     NodeKind = "user"
	KindDecision NodeKind = "decision"
	KindScript   NodeKind = "script"
)

// Node is one vertex of the diagram model.
type Node struct {
	ID    string
	Label string
	Kind  NodeKind
}

// Link is one labelled edge of the diagram model.
type Link struct {
	SourceID string
	TargetID string
	Label    string
}

// Model is the renderer-independent intermediate form of a workflow graph.
type Model struct {
	Nodes []Node
	Links []Link
}

// classify maps a workflow node to its diagram kind. Structural type wins
// over task type: a start node with a script task still renders as a start.
func classify(node *models.Node) NodeKind {
	switch {
	case node.IsStart():
		return KindStart
	case node.IsEnd():
		return KindEnd
	case node.IsDecision():
		return KindDecision
	case node.IsScriptService():
		return KindScript
	default:
		return KindUser
	}
}

// Build assembles the diagram model from a workflow's edges with both
// endpoints populated. Nodes are deduplicated and emitted in ID order so the
// rendering is deterministic.
func Build(paths []*models.NodePath) *Model {
	seen := make(map[string]Node)

	model := &Model{}

	add := func(node *models.Node) {
		if node == nil {
			return
		}

		if _, ok := seen[node.ID]; ok {
			return
		}

		seen[node.ID] = Node{
			ID:    node.ID,
			Label: node.Name,
			Kind:  classify(node),
		}
	}

	for _, path := range paths {
		add(path.SourceNode)
		add(path.TargetNode)

		model.Links = append(model.Links, Link{
			SourceID: path.SourceNodeID,
			TargetID: path.TargetNodeID,
			Label:    path.Name,
		})
	}

	model.Nodes = make([]Node, 0, len(seen))
	for _, node := range seen {
		model.Nodes = append(model.Nodes, node)
	}

	sort.Slice(model.Nodes, func(i, j int) bool {
		return model.Nodes[i].ID < model.Nodes[j].ID
	})

	return model
}
