package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/planroom/drawings/internal/drawings/model"
)

var disciplineColors = map[model.Discipline]*color.Color{
	model.DisciplineArchitecture: color.New(color.FgCyan),
	model.DisciplineStructural:   color.New(color.FgYellow),
	model.DisciplineElectrical:   color.New(color.FgHiYellow),
	model.DisciplinePlumbing:     color.New(color.FgBlue),
	model.DisciplineMechanical:   color.New(color.FgMagenta),
	model.DisciplineCivil:        color.New(color.FgGreen),
}

var otherColor = color.New(color.FgWhite)
var headingLabel = color.New(color.Bold)

var titleCase = cases.Title(language.English)

func disciplineBadge(d model.Discipline) string {
	c, ok := disciplineColors[d]
	if !ok {
		c = otherColor
	}
	return c.Sprintf("%-3s", string(d))
}

// humanSize formats a byte count with binary units.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func userName(u model.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.ID != "" {
		return u.ID
	}
	return "unknown"
}

// printDrawingList prints one line per drawing: discipline, code, title and
// the current version.
func printDrawingList(w io.Writer, drawings []model.Drawing) {
	if len(drawings) == 0 {
		fmt.Fprintln(w, "No drawings found")
		return
	}
	for _, d := range drawings {
		rev := "-"
		if v, ok := d.Current(); ok {
			rev = fmt.Sprintf("v%d", v.VersionNumber)
		}
		fmt.Fprintf(w, "%s  %-12s %-4s %s  (%s)\n", disciplineBadge(d.Discipline), d.Code, rev, d.Title, d.ID)
	}
}

// printDrawing prints a drawing with its version history and comments.
func printDrawing(w io.Writer, d model.Drawing) {
	headingLabel.Fprintf(w, "%s  %s\n", d.Code, d.Title)
	fmt.Fprintf(w, "ID: %s\n", d.ID)
	fmt.Fprintf(w, "Discipline: %s (%s)\n", titleCase.String(d.Discipline.Label()), d.Discipline)
	if d.Status != "" {
		fmt.Fprintf(w, "Status: %s\n", titleCase.String(d.Status))
	}

	fmt.Fprintln(w)
	headingLabel.Fprintln(w, "Versions:")
	for i, v := range d.Versions {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(w, " %s v%-3d %-28s %9s  %s  %s\n", marker, v.VersionNumber, v.FileName,
			humanSize(v.Size), formatTime(v.UploadDate), userName(v.Uploader))
	}

	fmt.Fprintln(w)
	if len(d.Comments) == 0 {
		fmt.Fprintln(w, "No comments")
		return
	}
	headingLabel.Fprintln(w, "Comments:")
	for _, c := range d.Comments {
		fmt.Fprintf(w, "  [%s] %s: %s\n", formatTime(c.Timestamp), userName(c.Author),
			strings.ReplaceAll(c.Content, "\n", "\n    "))
	}
}
