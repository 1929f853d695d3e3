package completions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "BASH"} {
		t.Run(shell, func(t *testing.T) {
			script, err := Generate(shell)
			require.NoError(t, err)
			assert.Contains(t, script, "ruyienv")
			assert.Contains(t, script, "remove")
			assert.Contains(t, script, "list --format paths")
		})
	}
}

func TestGenerateUnsupported(t *testing.T) {
	_, err := Generate("powershell")
	assert.ErrorContains(t, err, "unsupported shell")
}
