package status

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors and styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// Render renders the status data to a string
func Render(data *Data) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("findexer %s", data.Version)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Configuration"))
	b.WriteString("\n")
	writeKV(&b, "Config file", data.ConfigPath)
	writeKV(&b, "Allowed base", data.AllowedBase)
	writeKV(&b, "Table", data.Table)
	writeKV(&b, "Hash", fmt.Sprintf("%s (column %s)", data.HashAlgo, data.HashField))
	writeKV(&b, "Matching", data.Mode)
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Database"))
	b.WriteString("\n")
	writeKV(&b, "Driver", data.Driver)
	if !data.SchemaReady {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render("✗ schema not ready — run 'findexer init-db'"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString("  ")
	b.WriteString(successStyle.Render("✓ schema ready"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Index"))
	b.WriteString("\n")
	writeKV(&b, "Records", fmt.Sprintf("%d", data.RecordCount))
	if len(data.TopLevelDirs) > 0 {
		dirs := append([]string(nil), data.TopLevelDirs...)
		sort.Strings(dirs)
		writeKV(&b, "Top-level dirs", strings.Join(dirs, ", "))
	}
	return b.String()
}

func writeKV(b *strings.Builder, key, value string) {
	b.WriteString("  ")
	b.WriteString(keyStyle.Render(key + ":"))
	b.WriteString(" ")
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}
