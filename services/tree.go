package services

import (
	"catalog-backend/models"

	"github.com/google/uuid"
)

// BuildForest links flat categories into trees using ParentID. Input order
// is kept among siblings. Nodes whose parent is not in the input become
// roots.
func BuildForest(nodes []*models.Category) []*models.Category {
	byID := make(map[uuid.UUID]*models.Category, len(nodes))
	for _, n := range nodes {
		n.Children = nil
		byID[n.ID] = n
	}

	roots := make([]*models.Category, 0)
	for _, n := range nodes {
		if n.ParentID != nil {
			if parent, ok := byID[*n.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
