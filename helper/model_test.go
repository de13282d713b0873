package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareModel(t *testing.T) {
	t.Run("Return existing model path when model exists", func(t *testing.T) {
		modelDir := t.TempDir()
		modelPath := filepath.Join(modelDir, "test_mock-model")

		err := os.MkdirAll(modelPath, 0750)
		require.NoError(t, err, "Expected directory creation to succeed")

		path, err := PrepareModel("test/mock-model", modelDir)
		assert.NoError(t, err, "Expected PrepareModel to not return an error for existing model")
		assert.Equal(t, modelPath, path, "Expected returned path to match existing model path")
	})

	t.Run("Sanitize model name with slash", func(t *testing.T) {
		modelDir := t.TempDir()
		expectedPath := filepath.Join(modelDir, "organization_model-name")

		err := os.MkdirAll(expectedPath, 0750)
		require.NoError(t, err, "Expected directory creation to succeed")

		path, err := PrepareModel("organization/model-name", modelDir)
		assert.NoError(t, err, "Expected PrepareModel to not return an error")
		assert.Equal(t, expectedPath, path, "Expected path to use sanitized name")
	})

	t.Run("Handle model name without slash", func(t *testing.T) {
		modelDir := t.TempDir()
		expectedPath := filepath.Join(modelDir, "simple-model")

		err := os.MkdirAll(expectedPath, 0750)
		require.NoError(t, err, "Expected directory creation to succeed")

		path, err := PrepareModel("simple-model", modelDir)
		assert.NoError(t, err, "Expected PrepareModel to not return an error")
		assert.Equal(t, expectedPath, path, "Expected path to use model name directly")
	})

	t.Run("Default model directory when empty", func(t *testing.T) {
		modelPath := filepath.Join("./models", "test_default-dir")

		err := os.MkdirAll(modelPath, 0750)
		require.NoError(t, err, "Expected directory creation to succeed")
		defer os.RemoveAll(modelPath)

		path, err := PrepareModel("test/default-dir", "")
		assert.NoError(t, err, "Expected PrepareModel to not return an error")
		assert.Equal(t, modelPath, path, "Expected default directory to be ./models")
	})
}
