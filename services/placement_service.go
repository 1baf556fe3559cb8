package services

import (
	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/models"
	"gorm.io/gorm"
)

// FindPlacement returns the code of the member the next recruit of sponsorCode
// is nested under: the first node, in breadth-first left-to-right order
// starting at the sponsor, with fewer than MatrixWidth children.
func FindPlacement(tx *gorm.DB, sponsorCode string) (string, error) {
	var count int64
	if err := tx.Model(&models.Member{}).Where("member_code = ?", sponsorCode).Count(&count).Error; err != nil {
		return "", aborted(err, "lookup sponsor")
	}
	if count == 0 {
		return "", ErrSponsorNotFound
	}

	width := config.Business.MatrixWidth
	queue := []string{sponsorCode}
	visited := map[string]bool{sponsorCode: true}

	for len(queue) > 0 {
		candidate := queue[0]
		queue = queue[1:]

		children, err := placementChildren(tx, candidate)
		if err != nil {
			return "", aborted(err, "load placement children")
		}
		if len(children) < width {
			return candidate, nil
		}

		for _, child := range children {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}

	return "", ErrMatrixFull
}

// placementChildren lists the members placed directly under code, in the
// order they were registered.
func placementChildren(tx *gorm.DB, code string) ([]string, error) {
	var children []string
	err := tx.Model(&models.Member{}).
		Where("upline_id = ?", code).
		Order("seq asc").
		Pluck("member_code", &children).Error
	return children, err
}

func countPlacementChildren(tx *gorm.DB, code string) (int64, error) {
	var count int64
	err := tx.Model(&models.Member{}).Where("upline_id = ?", code).Count(&count).Error
	return count, err
}
