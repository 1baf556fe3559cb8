package services

import (
	"context"
	"fmt"
	"testing"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeDepth(n *TreeNode) int {
	deepest := n.Depth
	for _, c := range n.Children {
		if d := treeDepth(c); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func TestBuildTreeStopsAtMaxDepth(t *testing.T) {
	db := testutil.SetupDB(t)
	p := testutil.Ptr

	testutil.InsertMember(t, db, "L0", nil, nil)
	for i := 1; i <= 8; i++ {
		parent := fmt.Sprintf("L%d", i-1)
		testutil.InsertMember(t, db, fmt.Sprintf("L%d", i), p(parent), p(parent))
	}

	tree, err := BuildTree(context.Background(), "L0", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, treeDepth(tree))

	node := tree
	for node.Depth < 3 {
		require.Len(t, node.Children, 1)
		node = node.Children[0]
	}
	assert.Equal(t, "L3", node.MemberCode)
	assert.NotNil(t, node.Children)
	assert.Empty(t, node.Children)
}

func TestBuildTreeCapsRequestedDepth(t *testing.T) {
	db := testutil.SetupDB(t)
	p := testutil.Ptr
	limit := config.Business.MaxTreeDepth

	testutil.InsertMember(t, db, "L0", nil, nil)
	for i := 1; i <= limit+10; i++ {
		parent := fmt.Sprintf("L%d", i-1)
		testutil.InsertMember(t, db, fmt.Sprintf("L%d", i), p(parent), p(parent))
	}

	for _, requested := range []int{0, -1, limit + 1, 100000} {
		tree, err := BuildTree(context.Background(), "L0", requested)
		require.NoError(t, err)
		assert.Equal(t, limit, treeDepth(tree), "requested depth %d", requested)
	}
}

func TestBuildTreeSurvivesCycles(t *testing.T) {
	db := testutil.SetupDB(t)
	p := testutil.Ptr

	testutil.InsertMember(t, db, "X", nil, p("Y"))
	testutil.InsertMember(t, db, "Y", nil, p("X"))

	tree, err := BuildTree(context.Background(), "X", 10)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Y", tree.Children[0].MemberCode)
	assert.Empty(t, tree.Children[0].Children)
}

func TestBuildTreeOrdersChildrenByRegistration(t *testing.T) {
	db := testutil.SetupDB(t)
	root := testutil.SeedRoot(t, db)

	a := registerUnder(t, root.MemberCode, "a")
	b := registerUnder(t, root.MemberCode, "b")
	c := registerUnder(t, root.MemberCode, "c")
	spill := registerUnder(t, a.MemberCode, "spill")

	tree, err := BuildTree(context.Background(), root.MemberCode, 0)
	require.NoError(t, err)
	require.Len(t, tree.Children, 3)
	assert.Equal(t, []string{a.MemberCode, b.MemberCode, c.MemberCode},
		[]string{tree.Children[0].MemberCode, tree.Children[1].MemberCode, tree.Children[2].MemberCode})
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, spill.MemberCode, tree.Children[0].Children[0].MemberCode)
	assert.Equal(t, 2, tree.Children[0].Children[0].Depth)
}

func TestBuildTreeUnknownRoot(t *testing.T) {
	testutil.SetupDB(t)

	_, err := BuildTree(context.Background(), "NOPE", 5)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestListDirectsAndLeaderboard(t *testing.T) {
	db := testutil.SetupDB(t)
	root := testutil.SeedRoot(t, db)
	a := registerUnder(t, root.MemberCode, "a")
	b := registerUnder(t, root.MemberCode, "b")
	a1 := registerUnder(t, a.MemberCode, "a1")

	directs, err := ListDirects(context.Background(), root.MemberCode)
	require.NoError(t, err)
	require.Len(t, directs, 2)
	assert.Equal(t, a.MemberCode, directs[0].MemberCode)
	assert.Equal(t, b.MemberCode, directs[1].MemberCode)

	for _, code := range []string{a.MemberCode, b.MemberCode, a1.MemberCode} {
		_, err := ActivateMember(context.Background(), code)
		require.NoError(t, err)
	}

	board, err := Leaderboard(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, a.MemberCode, board[0].MemberCode)
	for _, e := range board {
		assert.NotEqual(t, root.MemberCode, e.MemberCode)
	}
}

func TestGetRankProgress(t *testing.T) {
	db := testutil.SetupDB(t)
	root := testutil.SeedRoot(t, db)
	a := registerUnder(t, root.MemberCode, "a")

	progress, err := GetRankProgress(context.Background(), a.MemberCode)
	require.NoError(t, err)
	assert.Equal(t, "Associate", progress.Current.Name)
	require.NotNil(t, progress.Next)
	assert.Equal(t, "Bronze", progress.Next.Name)
	assert.Equal(t, 12, progress.TeamNeeded)
}
