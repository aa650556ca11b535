package drawingstest

import (
	"fmt"
	"time"

	"github.com/planroom/drawings/internal/drawings/model"
)

// Uploader is the user fixtures are stamped with.
var Uploader = model.User{ID: "u-1", FullName: "Ana Ruiz"}

// NewDrawing builds a drawing with versions numbered 1..versions, newest first.
func NewDrawing(id, code, title string, d model.Discipline, versions int) model.Drawing {
	out := model.Drawing{
		ID:         id,
		Code:       code,
		Title:      title,
		Discipline: d,
		Status:     "approved",
	}
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for n := versions; n >= 1; n-- {
		out.Versions = append(out.Versions, model.Version{
			ID:            fmt.Sprintf("%s-v%d", id, n),
			VersionNumber: n,
			FileName:      fmt.Sprintf("%s-r%d.pdf", code, n),
			URL:           fmt.Sprintf("https://files.example/%s/%d", id, n),
			Size:          int64(1024 * n),
			Uploader:      Uploader,
			UploadDate:    base.Add(time.Duration(n) * time.Hour),
		})
	}
	return out
}

// Sample returns the two-drawing collection used across tests.
func Sample() []model.Drawing {
	return []model.Drawing{
		NewDrawing("d-1", "A-1", "Plan Norte", model.DisciplineArchitecture, 2),
		NewDrawing("d-2", "B-2", "Plan Sur", model.DisciplineStructural, 1),
	}
}
