package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSelectCommand(t *testing.T) {
	page := filepath.Join(t.TempDir(), "page.html")
	html := `<html><body>
		<p>Free returns within 30 days</p>
		<div class="details"><span>Composition: 70% wool, 30% polyamide</span></div>
	</body></html>`
	require.NoError(t, os.WriteFile(page, []byte(html), 0o644))

	out, err := runCommand(t, "", "select", "--text", page)
	require.NoError(t, err)

	assert.Contains(t, out, "Score")
	assert.Contains(t, out, "Composition: 70% wool, 30% polyamide")
	assert.NotContains(t, out, "Free returns")
	assert.Contains(t, out, "---")
}

func TestSelectCommand_NoCandidates(t *testing.T) {
	out, err := runCommand(t, "<p>nothing here</p>", "select", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "no composition candidates found")
}

func TestSelectCommand_MissingFile(t *testing.T) {
	_, err := runCommand(t, "", "select", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestGradeCommand(t *testing.T) {
	doc := "```json\n" + `{"fibers":[{"name":"Recycled Polyester","percentage":80},{"name":"cotton","percentage":20}],"lining":[{"name":"viscose","percentage":100}],"trim":null,"other":null,"composition_grade":"Mixed"}` + "\n```"

	out, err := runCommand(t, doc, "grade", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "polyester (Recycled)")
	assert.Contains(t, out, "lining")
	assert.Contains(t, out, "Grade: Synthetic")
}

func TestGradeCommand_Malformed(t *testing.T) {
	_, err := runCommand(t, "not json", "grade", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed extraction output")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("  short ", 10))
	assert.Equal(t, "abcdefg...", preview("abcdefghijklmnop", 10))
}
