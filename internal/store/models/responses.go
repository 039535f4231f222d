package models

import "sort"

// StoreSummary is the list view of a store.
type StoreSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	AisleCount  int    `json:"aisle_count"`
}

func (s *Store) Summary() StoreSummary {
	return StoreSummary{
		ID:          s.ID,
		Name:        s.Name,
		Address:     s.Address,
		Description: s.Description,
		AisleCount:  len(s.Aisles),
	}
}

// SortSummaries orders summaries by store id.
func SortSummaries(list []StoreSummary) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
