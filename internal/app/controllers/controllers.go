package controllers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yigit/ssis/internal/app/models"
)

// deleteMessage summarises a cascade result for the response message.
func deleteMessage(r *models.CascadeResult) string {
	label := strings.ToUpper(string(r.Entity[:1])) + string(r.Entity[1:])
	msg := fmt.Sprintf("%s %s deleted successfully.", label, r.Key)

	var parts []string
	for _, e := range sortedEntities(r.Nullified) {
		parts = append(parts, fmt.Sprintf("%d %s record(s) had their %s set to NULL", r.Nullified[e], e, foreignKeyOf(e)))
	}
	for _, e := range sortedEntities(r.Deleted) {
		if e == r.Entity {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d related %s record(s) deleted", r.Deleted[e], e))
	}
	if len(parts) > 0 {
		msg += " " + strings.Join(parts, "; ") + "."
	}
	return msg
}

func foreignKeyOf(e models.Entity) string {
	if rel, ok := models.ParentOf(e); ok {
		return rel.Column
	}
	return "reference"
}

func sortedEntities(m map[models.Entity]int) []models.Entity {
	out := make([]models.Entity, 0, len(m))
	for e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
