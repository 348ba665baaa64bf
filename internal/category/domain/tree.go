package domain

import "sort"

// TreeNode 分类树节点
type TreeNode struct {
	*Category
	ChildCount int         `json:"child_count"`
	Children   []*TreeNode `json:"children"`
}

// BuildTree 基于单次遍历的父子索引构建分类树。
// activeOnly 为 true 时只纳入启用中的分类；子节点按 sort_order、name 排序。
func BuildTree(categories []*Category, activeOnly bool) []*TreeNode {
	children := make(map[string][]*TreeNode, len(categories))

	for _, c := range categories {
		if activeOnly && !c.IsActive {
			continue
		}
		node := &TreeNode{Category: c, Children: []*TreeNode{}}
		children[c.ParentID] = append(children[c.ParentID], node)
	}

	var attach func(node *TreeNode)
	attach = func(node *TreeNode) {
		kids := children[node.CategoryID]
		sortNodes(kids)
		node.Children = kids
		node.ChildCount = len(kids)
		for _, kid := range kids {
			attach(kid)
		}
	}

	roots := make([]*TreeNode, 0)
	for _, node := range children[""] {
		// 父级被 activeOnly 过滤掉的节点不作为根提升
		attach(node)
		roots = append(roots, node)
	}
	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}
