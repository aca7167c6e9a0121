package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Course", "Score"},
		Rows: []map[string]string{
			{"Course": "Algorithms", "Score": "92"},
			{"Course": "Databases", "Score": "78"},
		},
	}
}

func TestCSVRendererRender(t *testing.T) {
	out, err := NewCSVRenderer().Render(sampleDataset(), "ignored")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Course,Score", lines[0])
	assert.Equal(t, "Algorithms,92", lines[1])
}

func TestCSVRendererRequiresHeaders(t *testing.T) {
	_, err := NewCSVRenderer().Render(Dataset{}, "")
	require.Error(t, err)
}

func TestPDFRendererRender(t *testing.T) {
	out, err := NewPDFRenderer().Render(sampleDataset(), "Transcript")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFRendererRequiresHeaders(t *testing.T) {
	_, err := NewPDFRenderer().Render(Dataset{}, "Transcript")
	require.Error(t, err)
}
