package utils

import (
	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/models"
)

// GetAllCategoryIDs returns the category id plus every descendant id,
// breadth first. Used to filter products by a category subtree.
func GetAllCategoryIDs(gdb *gorm.DB, rootID uint) ([]uint, error) {
	result := []uint{rootID}
	queue := []uint{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var children []models.Category
		if err := gdb.Where("parent_id = ?", current).Find(&children).Error; err != nil {
			return nil, err
		}

		for _, child := range children {
			result = append(result, child.ID)
			queue = append(queue, child.ID)
		}
	}

	return result, nil
}
