package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TESTS.md")
	err := os.WriteFile(path, []byte("# Write tests for the snippets below\n\n"), 0644)
	require.NoError(t, err)

	got := Header(path)
	assert.Equal(t, "# Write tests for the snippets below", got)
}

func TestHeader_MissingFileDegradesToWarning(t *testing.T) {
	got := Header(filepath.Join(t.TempDir(), "no-such-prompt.md"))
	assert.Contains(t, got, "# Warning: failed to read prompt:")
}
