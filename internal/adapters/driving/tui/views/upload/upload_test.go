package upload

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halide-labs/partlens-cli/internal/adapters/driving/tui/messages"
	"github.com/halide-labs/partlens-cli/internal/core/domain"
)

type stubReader struct {
	calls int
}

func (s *stubReader) Preview(_ string, maxRows int) (*domain.TablePreview, error) {
	s.calls++
	return &domain.TablePreview{Headers: []string{"Part"}, Rows: make([][]string, maxRows)}, nil
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_WorkflowCycle(t *testing.T) {
	v := NewView(nil, nil, &stubReader{}, 5)
	require.Equal(t, domain.WorkflowAlt, v.Workflow())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.WorkflowValueSSE, v.Workflow())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.WorkflowValuePoll, v.Workflow())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, domain.WorkflowAlt, v.Workflow())
}

func TestView_SubmitRejectsInvalidSelection(t *testing.T) {
	v := NewView(nil, nil, &stubReader{}, 5)

	v, cmd := v.Update(keyMsg("s"))
	assert.Nil(t, cmd, "invalid selection must not produce a submit command")
	assert.Error(t, v.Err())
}

func TestView_SubmitEmitsRequest(t *testing.T) {
	v := NewView(nil, nil, &stubReader{}, 5)
	v.Selection().Add(domain.File{Name: "parts.xlsx", Path: "/tmp/parts.xlsx"})

	v, cmd := v.Update(keyMsg("s"))
	require.NotNil(t, cmd)

	msg := cmd()
	req, ok := msg.(messages.SubmitRequested)
	require.True(t, ok)
	assert.Equal(t, domain.WorkflowAlt, req.Workflow)
	assert.Equal(t, 1, req.Selection.Len())
	assert.NoError(t, v.Err())
}

func TestView_RemoveDropsLastFile(t *testing.T) {
	v := NewView(nil, nil, &stubReader{}, 5)
	v.Selection().Add(domain.File{Name: "parts.xlsx"})
	v.Selection().Add(domain.File{Name: "quote.pdf"})

	v, _ = v.Update(keyMsg("x"))

	files := v.Selection().Files()
	require.Len(t, files, 1)
	assert.Equal(t, "parts.xlsx", files[0].Name)

	// Removing from an empty selection is a no-op.
	v, _ = v.Update(keyMsg("x"))
	v, _ = v.Update(keyMsg("x"))
	assert.Zero(t, v.Selection().Len())
}

func TestView_PreviewLoaded(t *testing.T) {
	v := NewView(nil, nil, &stubReader{}, 5)

	preview := &domain.TablePreview{Headers: []string{"Part"}, Rows: [][]string{{"bolt"}}}
	v, _ = v.Update(messages.PreviewLoaded{Path: "/tmp/parts.xlsx", Preview: preview})

	assert.Contains(t, v.View(), "Part")
	assert.Contains(t, v.View(), "bolt")
}

func TestView_Reset(t *testing.T) {
	v := NewView(nil, nil, &stubReader{}, 5)
	v.Selection().Add(domain.File{Name: "parts.xlsx"})

	v.Reset()
	assert.Zero(t, v.Selection().Len())
	assert.NoError(t, v.Err())
}
