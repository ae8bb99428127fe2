package services

import "github.com/GameNest/models"

// BuildCommentTree nests comments under their parents in two passes over the
// input. Children keep the input order. A comment whose parent is absent
// from the input becomes a root. The result is never nil.
func BuildCommentTree(comments []models.Comment) []*models.CommentNode {
	nodes := make(map[int64]*models.CommentNode, len(comments))
	ordered := make([]*models.CommentNode, 0, len(comments))
	for _, c := range comments {
		node := &models.CommentNode{Comment: c, Children: []*models.CommentNode{}}
		nodes[c.ID] = node
		ordered = append(ordered, node)
	}

	roots := []*models.CommentNode{}
	for _, node := range ordered {
		if node.Parent_ID != nil {
			if parent, ok := nodes[*node.Parent_ID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
