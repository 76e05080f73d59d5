package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"bouncing-ball", "Bouncing Ball"},
		{"marble_cube", "Marble Cube"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, titleCase(tc.input))
		})
	}
}

func writeSceneFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseSceneMetadata(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.yaml",
			content: `# Scene: Bouncing Ball
# Variant: Motion Blur
# Description: A ball bouncing over a checkerboard
# Group: Animations

background: [0.2, 0.2, 0.2]`,
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Bouncing Ball",
				DisplayName: "Bouncing Ball - Motion Blur",
				Description: "A ball bouncing over a checkerboard",
				Group:       "Animations",
				Type:        "file",
				Variant:     "Motion Blur",
			},
		},
		{
			name: "partial_metadata.yml",
			content: `# Scene: Marble
# Description: Marble sphere

spheres: []`,
			expected: SceneInfo{
				ID:          "file:partial_metadata",
				Name:        "Marble",
				DisplayName: "Marble",
				Description: "Marble sphere",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
		{
			name:    "no_metadata.json",
			content: `{"spheres": []}`,
			expected: SceneInfo{
				ID:          "file:no_metadata",
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
		{
			name: "mixed_content.yaml",
			content: `# Scene: Test Scene
spheres: []
# Variant: Ignored`,
			expected: SceneInfo{
				ID:          "file:mixed_content",
				Name:        "Test Scene",
				DisplayName: "Test Scene",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSceneFile(t, dir, tc.name, tc.content)

			result, err := ParseSceneMetadata(path)
			require.NoError(t, err)

			tc.expected.FilePath = path
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestParseSceneMetadata_MissingFile(t *testing.T) {
	info, err := ParseSceneMetadata(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Nonexistent", info.DisplayName)
}

func TestListSceneFiles(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "b.yaml", "# Scene: Zebra\n")
	writeSceneFile(t, dir, "a.json", "{}")
	writeSceneFile(t, dir, "ignored.txt", "not a scene")

	scenes, err := ListSceneFiles(dir)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "A", scenes[0].DisplayName)
	assert.Equal(t, "Zebra", scenes[1].DisplayName)

	missing, err := ListSceneFiles(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeSceneFile(t, dir, "orbit.yaml", "# Scene: Orbit\n# Group: Animations\n")

	response, err := ListAllScenes(dir)
	require.NoError(t, err)
	require.Len(t, response.Groups, 2)

	builtIn := response.Groups[0]
	assert.Equal(t, "Built-in Scenes", builtIn.Name)
	require.Len(t, builtIn.Scenes, len(BuiltinNames()))
	for _, info := range builtIn.Scenes {
		assert.Equal(t, "builtin", info.Type)
		assert.NotEmpty(t, info.Description)
		_, err := NewBuiltin(info.ID)
		assert.NoError(t, err)
	}

	assert.Equal(t, "Animations", response.Groups[1].Name)
	assert.Equal(t, "file:orbit", response.Groups[1].Scenes[0].ID)
}
