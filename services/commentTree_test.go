package services

import (
	"testing"

	"github.com/GameNest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func comment(id int64, parent *int64) models.Comment {
	return models.Comment{ID: id, Parent_ID: parent, Comment_Content: "c"}
}

func ids(nodes []*models.CommentNode) []int64 {
	out := []int64{}
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func countNodes(nodes []*models.CommentNode) int {
	n := 0
	for _, node := range nodes {
		n += 1 + countNodes(node.Children)
	}
	return n
}

func TestBuildCommentTree(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		tree := BuildCommentTree(nil)
		require.NotNil(t, tree)
		assert.Empty(t, tree)
	})

	t.Run("roots and replies in storage order", func(t *testing.T) {
		// storage order: root 3, root 1 with replies 5 then 2
		tree := BuildCommentTree([]models.Comment{
			comment(3, nil),
			comment(5, ptr(1)),
			comment(2, ptr(1)),
			comment(1, nil),
		})

		assert.Equal(t, []int64{3, 1}, ids(tree))
		assert.Empty(t, tree[0].Children)
		assert.Equal(t, []int64{5, 2}, ids(tree[1].Children))
	})

	t.Run("nested replies", func(t *testing.T) {
		tree := BuildCommentTree([]models.Comment{
			comment(1, nil),
			comment(2, ptr(1)),
			comment(3, ptr(2)),
			comment(4, ptr(3)),
		})

		require.Len(t, tree, 1)
		require.Len(t, tree[0].Children, 1)
		require.Len(t, tree[0].Children[0].Children, 1)
		assert.Equal(t, int64(4), tree[0].Children[0].Children[0].Children[0].ID)
	})

	t.Run("orphans are promoted to roots", func(t *testing.T) {
		tree := BuildCommentTree([]models.Comment{
			comment(10, ptr(99)),
			comment(11, nil),
			comment(12, ptr(10)),
		})

		assert.Equal(t, []int64{10, 11}, ids(tree))
		assert.Equal(t, []int64{12}, ids(tree[0].Children))
	})

	t.Run("self reference is a root", func(t *testing.T) {
		tree := BuildCommentTree([]models.Comment{comment(7, ptr(7))})
		assert.Equal(t, []int64{7}, ids(tree))
		assert.Empty(t, tree[0].Children)
	})

	t.Run("every comment appears exactly once", func(t *testing.T) {
		input := []models.Comment{
			comment(1, nil), comment(2, ptr(1)), comment(3, ptr(1)),
			comment(4, ptr(2)), comment(5, ptr(42)), comment(6, nil),
		}
		tree := BuildCommentTree(input)
		assert.Equal(t, len(input), countNodes(tree))
	})
}
