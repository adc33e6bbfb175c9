package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatTable,
		"TABLE":    FormatTable,
		"csv":      FormatCSV,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		" html ":   FormatHTML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func renderDefault(t *testing.T, format Format) string {
	t.Helper()
	loads := capacity.Derive(domain.DefaultPlan())
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, loads, capacity.Summarize(loads), format))
	return buf.String()
}

func TestRender_Table(t *testing.T) {
	out := renderDefault(t, FormatTable)

	assert.Contains(t, out, "Miércoles")
	assert.Contains(t, out, statusOver)
	assert.Contains(t, out, "+250", "viernes gap")
	assert.Contains(t, out, "2350")
	assert.Contains(t, out, "6 días")
	assert.Contains(t, out, "╭", "rounded style")
}

func TestRender_CSV(t *testing.T) {
	out := renderDefault(t, FormatCSV)
	lines := strings.Split(strings.TrimSpace(out), "\n")

	// header + 7 days + footer
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], "Día,Turnos,Personal,Capacidad"))
	assert.Contains(t, lines[1], "Domingo")
	assert.Contains(t, lines[1], ",23,575,600,+25,")
	assert.Contains(t, lines[7], "Sábado,-,0,0,0,0,0,OK")
}

func TestRender_MarkdownAndHTML(t *testing.T) {
	md := renderDefault(t, FormatMarkdown)
	assert.Contains(t, md, "| Día |")

	html := renderDefault(t, FormatHTML)
	assert.Contains(t, html, "<table")
	assert.Contains(t, html, "Viernes")
}

func TestRenderStaffing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderStaffing(&buf, domain.DefaultPlan().Staffing, FormatCSV))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "Turno,Reach,Grúas,Operativo,Certificador,Total", lines[0])
	assert.Equal(t, "Turno 1,3,1,3,1,8", lines[1])
	assert.Equal(t, "Turno PT,2,1,3,1,7", lines[3])
	assert.Equal(t, "Total,8,3,9,3,23", lines[4])
}
