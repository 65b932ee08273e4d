package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWritesConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newInitCmd()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), configFileName)

	content, err := os.ReadFile(configFileName)
	require.NoError(t, err)
	require.Contains(t, string(content), "repair:")
}
