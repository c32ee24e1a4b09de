package diagram

import (
	"fmt"
	"strings"
)

// classDefs are the style classes attached to rendered nodes, one per kind.
var classDefs = []string{
	"classDef startNodeStyle fill:#1767d1,stroke:#333,stroke-width:2px",
	"classDef endNodeStyle fill:#a019e2,stroke:#333,stroke-width:4px",
	"classDef decisionNodeStyle fill:#ae2,stroke:#333,stroke-width:2px",
	"classDef userNodeStyle fill:#e3a571,stroke:#333,stroke-width:2px",
	"classDef scriptServiceNodeStyle fill:#aef,stroke:#333,stroke-width:2px",
}

// RenderMermaid renders the model as a top-down mermaid flowchart. An empty
// model renders as the empty string.
func RenderMermaid(model *Model) string {
	if model == nil || len(model.Links) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString("graph TD\n")

	for _, def := range classDefs {
		fmt.Fprintf(&b, "\t%s\n", def)
	}

	for _, node := range model.Nodes {
		fmt.Fprintf(&b, "\t%s\n", renderNode(node))

		if class := styleClass(node.Kind); class != "" {
			fmt.Fprintf(&b, "\tclass %s %s\n", node.ID, class)
		}
	}

	for _, link := range model.Links {
		fmt.Fprintf(&b, "\t%s\n", renderLink(link))
	}

	return b.String()
}

// renderNode picks the mermaid shape per node kind: circles for start and
// end, a rhombus for decisions, rounded boxes with an icon for user and
// script nodes.
func renderNode(node Node) string {
	label := escape(node.Label)

	switch node.Kind {
	case KindStart, KindEnd:
		return fmt.Sprintf("%s((%s))", node.ID, label)
	case KindDecision:
		return fmt.Sprintf("%s{%s}", node.ID, label)
	case KindScript:
		return fmt.Sprintf("%s(fa:fa-code %s)", node.ID, label)
	default:
		return fmt.Sprintf("%s(fa:fa-users %s)", node.ID, label)
	}
}

func styleClass(kind NodeKind) string {
	switch kind {
	case KindStart:
		return "startNodeStyle"
	case KindEnd:
		return "endNodeStyle"
	case KindDecision:
		return "decisionNodeStyle"
	case KindUser:
		return "userNodeStyle"
	case KindScript:
		return "scriptServiceNodeStyle"
	default:
		return ""
	}
}

func renderLink(link Link) string {
	if link.Label == "" {
		return fmt.Sprintf("%s --> %s", link.SourceID, link.TargetID)
	}

	return fmt.Sprintf("%s -->|%s| %s", link.SourceID, escape(link.Label), link.TargetID)
}

// escape quotes labels that would break mermaid syntax.
func escape(label string) string {
	if label == "" {
		return `" "`
	}

	if strings.ContainsAny(label, "(){}[]|<>&\"") {
		return fmt.Sprintf("%q", strings.ReplaceAll(label, `"`, "#quot;"))
	}

	return label
}
