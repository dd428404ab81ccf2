package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, theme.Primary)
	assert.NotEmpty(t, theme.Error)
	assert.NotEqual(t, theme.Success, theme.Error)
}

func TestNewStylesNilThemeFallsBack(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestStylesRender(t *testing.T) {
	s := DefaultStyles()

	// Rendering must carry the text through regardless of colour profile.
	assert.Contains(t, s.Title.Render("partlens"), "partlens")
	assert.Contains(t, s.Error.Render("failed"), "failed")
	assert.Contains(t, s.LogLine.Render("log line"), "log line")
}
