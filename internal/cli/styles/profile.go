package styles

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/profilecache/internal/application/port"
	"github.com/bnema/profilecache/internal/domain/entity"
)

// Lookup is one profile resolution as shown by get and demo.
type Lookup struct {
	UserID  string
	Hit     bool
	Profile *entity.Profile
	Err     error
	Elapsed time.Duration
	// Keys is the cache content after the lookup, most recent first.
	Keys []string
}

// ProfileRenderer renders profile lookups and cache statistics.
type ProfileRenderer struct {
	theme *Theme
}

// NewProfileRenderer creates a new ProfileRenderer.
func NewProfileRenderer(theme *Theme) *ProfileRenderer {
	return &ProfileRenderer{theme: theme}
}

// RenderLookup renders one lookup on a single line.
func (r *ProfileRenderer) RenderLookup(l Lookup) string {
	t := r.theme

	var badge string
	switch {
	case l.Err != nil:
		badge = t.FailBadge()
	case l.Hit:
		badge = t.HitBadge()
	default:
		badge = t.LoadBadge()
	}

	parts := []string{badge, t.Title.Render(l.UserID)}
	if l.Err != nil {
		parts = append(parts, t.ErrorStyle.Render(l.Err.Error()))
	} else if l.Profile != nil {
		parts = append(parts,
			t.Normal.Render(l.Profile.Name),
			t.Highlight.Render(fmt.Sprintf("score %d", l.Profile.Score)),
		)
	}
	parts = append(parts, t.Subtle.Render(l.Elapsed.Round(time.Millisecond).String()))
	if l.Keys != nil {
		parts = append(parts, t.Subtle.Render("["+strings.Join(l.Keys, " ")+"]"))
	}
	return strings.Join(parts, " ")
}

// RenderStats renders cache counters in a box.
func (r *ProfileRenderer) RenderStats(stats port.CacheStats) string {
	t := r.theme

	rows := []struct {
		label string
		value string
	}{
		{"entries", fmt.Sprintf("%d/%d", stats.Entries, stats.Capacity)},
		{"hits", fmt.Sprint(stats.Hits)},
		{"misses", fmt.Sprint(stats.Misses)},
		{"coalesced", fmt.Sprint(stats.Coalesced)},
		{"loads", fmt.Sprint(stats.Loads)},
		{"load failures", fmt.Sprint(stats.LoadFailures)},
		{"evictions", fmt.Sprint(stats.Evictions)},
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		label := t.Subtle.Width(14).Render(row.label)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, t.Normal.Render(row.value)))
	}

	header := t.BoxHeader.Render("Cache")
	return t.Box.Render(lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(lines, "\n")))
}

// RenderWarmResult summarises a warm-up run.
func (r *ProfileRenderer) RenderWarmResult(loaded []string, failed map[string]error) string {
	t := r.theme

	var b strings.Builder
	b.WriteString(t.SuccessStyle.Render(fmt.Sprintf("warmed %d profile(s)", len(loaded))))
	for id, err := range failed {
		b.WriteString("\n")
		b.WriteString(t.FailBadge())
		b.WriteString(" ")
		b.WriteString(t.Title.Render(id))
		b.WriteString(" ")
		b.WriteString(t.ErrorStyle.Render(err.Error()))
	}
	return b.String()
}

// RenderError renders an error message.
func (r *ProfileRenderer) RenderError(err error) string {
	return r.theme.ErrorStyle.Render("Error: " + err.Error())
}
