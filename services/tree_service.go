package services

import (
	"context"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TreeNode struct {
	MemberCode string      `json:"member_code"`
	FullName   string      `json:"full_name"`
	SponsorID  *string     `json:"sponsor_id"`
	IsActive   bool        `json:"is_active"`
	Rank       string      `json:"rank"`
	TotalTeam  int         `json:"total_team"`
	Depth      int         `json:"depth"`
	Children   []*TreeNode `json:"children"`
}

func newTreeNode(m models.Member, depth int) *TreeNode {
	return &TreeNode{
		MemberCode: m.MemberCode,
		FullName:   m.FullName,
		SponsorID:  m.SponsorID,
		IsActive:   m.IsActive,
		Rank:       m.Rank,
		TotalTeam:  m.TotalTeam,
		Depth:      depth,
		Children:   []*TreeNode{},
	}
}

// BuildTree reads the placement tree under rootCode level by level. Nodes at
// maxDepth get no children, and a node already seen is never expanded again,
// so corrupted upline data cannot make the walk loop. maxDepth is capped at
// the configured maximum, and maxDepth <= 0 uses it.
func BuildTree(ctx context.Context, rootCode string, maxDepth int) (*TreeNode, error) {
	if maxDepth <= 0 || maxDepth > config.Business.MaxTreeDepth {
		maxDepth = config.Business.MaxTreeDepth
	}
	db := database.DB.WithContext(ctx)

	var root models.Member
	if err := db.Where("member_code = ?", rootCode).First(&root).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, aborted(err, "load tree root")
	}

	rootNode := newTreeNode(root, 0)
	visited := map[string]bool{root.MemberCode: true}
	level := []*TreeNode{rootNode}

	for depth := 0; depth < maxDepth && len(level) > 0; depth++ {
		byCode := make(map[string]*TreeNode, len(level))
		codes := make([]string, 0, len(level))
		for _, n := range level {
			byCode[n.MemberCode] = n
			codes = append(codes, n.MemberCode)
		}

		var children []models.Member
		if err := db.Where("upline_id IN ?", codes).Order("seq asc").Find(&children).Error; err != nil {
			return nil, aborted(err, "load tree level")
		}

		next := make([]*TreeNode, 0, len(children))
		for _, child := range children {
			if visited[child.MemberCode] {
				continue
			}
			visited[child.MemberCode] = true
			parent := byCode[*child.UplineID]
			node := newTreeNode(child, depth+1)
			parent.Children = append(parent.Children, node)
			next = append(next, node)
		}
		level = next
	}

	return rootNode, nil
}

// ListDirects returns the members who registered with memberCode as sponsor.
func ListDirects(ctx context.Context, memberCode string) ([]models.Member, error) {
	var directs []models.Member
	if err := database.DB.WithContext(ctx).Where("sponsor_id = ?", memberCode).
		Order("seq asc").Find(&directs).Error; err != nil {
		return nil, aborted(err, "list directs")
	}
	return directs, nil
}

// GetMember loads a member with rank history and rewards.
func GetMember(ctx context.Context, memberCode string) (*models.Member, error) {
	var member models.Member
	err := database.DB.WithContext(ctx).
		Preload("RankHistory", func(db *gorm.DB) *gorm.DB { return db.Order("achieved_at asc") }).
		Preload("Rewards").
		Where("member_code = ?", memberCode).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, aborted(err, "load member")
	}
	return &member, nil
}

type RankProgress struct {
	Current    config.Rank          `json:"current"`
	Next       *config.Rank         `json:"next,omitempty"`
	TeamSize   int                  `json:"team_size"`
	TeamNeeded int                  `json:"team_needed"`
	History    []models.RankHistory `json:"history"`
	Rewards    []models.Reward      `json:"rewards"`
}

func GetRankProgress(ctx context.Context, memberCode string) (*RankProgress, error) {
	member, err := GetMember(ctx, memberCode)
	if err != nil {
		return nil, err
	}

	ranks := config.Business.Ranks
	progress := &RankProgress{
		Current:  ranks[0],
		TeamSize: member.TotalTeam,
		History:  member.RankHistory,
		Rewards:  member.Rewards,
	}
	if member.RankLevel < len(ranks) {
		progress.Current = ranks[member.RankLevel]
	}
	if member.RankLevel+1 < len(ranks) {
		next := ranks[member.RankLevel+1]
		progress.Next = &next
		if needed := next.Threshold - member.TotalTeam; needed > 0 {
			progress.TeamNeeded = needed
		}
	}
	return progress, nil
}

type LeaderboardEntry struct {
	MemberCode    string          `json:"member_code"`
	FullName      string          `json:"full_name"`
	Rank          string          `json:"rank"`
	TotalTeam     int             `json:"total_team"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// Leaderboard ranks active members by team size, then earnings.
func Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var entries []LeaderboardEntry
	err := database.DB.WithContext(ctx).Model(&models.Member{}).
		Select("member_code, full_name, rank, total_team, total_earnings").
		Where("role = ? AND is_active = ?", models.RoleUser, true).
		Order("total_team desc, total_earnings desc, seq asc").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, aborted(err, "load leaderboard")
	}
	return entries, nil
}
