package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/pwgsync/pwgsync/pkg/piwigo"
)

type Node struct {
	Name     string
	ID       int64
	Children []*Node
}

// buildCategoryTree arranges a flat album list under a root node. Albums whose
// parent is missing from the list are attached to the root. Siblings are
// ordered by name, then id.
func buildCategoryTree(cats []piwigo.Category) *Node {
	root := &Node{Name: "Albums"}
	nodes := make(map[int64]*Node, len(cats))
	for _, cat := range cats {
		nodes[cat.ID] = &Node{Name: cat.Name, ID: cat.ID}
	}
	for _, cat := range cats {
		parent := root
		if !cat.ParentID.IsNil() {
			if p, ok := nodes[cat.ParentID.Value]; ok {
				parent = p
			}
		}
		parent.Children = append(parent.Children, nodes[cat.ID])
	}
	sortTree(root)
	return root
}

func sortTree(node *Node) {
	sort.Slice(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	for _, child := range node.Children {
		sortTree(child)
	}
}

// printCategoryTree prints the album tree
func printCategoryTree(w io.Writer, root *Node, showIDs bool) {
	fmt.Fprintln(w, root.Name)
	for i, child := range root.Children {
		printTree(w, child, "", i == len(root.Children)-1, showIDs)
	}
}

func printTree(w io.Writer, node *Node, prefix string, isLast bool, showIDs bool) {
	branch := "├── "
	if isLast {
		branch = "└── "
	}

	name := node.Name
	if showIDs {
		name = fmt.Sprintf("%s [%d]", name, node.ID)
	}
	fmt.Fprintf(w, "%s%s%s\n", prefix, branch, name)

	newPrefix := prefix + "│   "
	if isLast {
		newPrefix = prefix + "    "
	}
	for i, child := range node.Children {
		printTree(w, child, newPrefix, i == len(node.Children)-1, showIDs)
	}
}
