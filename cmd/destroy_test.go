package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDestroyCmd_Structure(t *testing.T) {
	assert.NotNil(t, destroyCmd)
	assert.Equal(t, "destroy <environment>", destroyCmd.Use)
	assert.NotEmpty(t, destroyCmd.Short)
	assert.Contains(t, destroyCmd.Long, `exactly "yes"`)
	assert.NotNil(t, destroyCmd.RunE)
}

func TestConfirmDestroy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"literal yes", "yes\n", true},
		{"yes without newline", "yes", true},
		{"capitalized", "Yes\n", false},
		{"single letter", "y\n", false},
		{"empty line", "\n", false},
		{"no", "no\n", false},
		{"closed input", "", false},
		{"yes with padding", "  yes  \n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := confirmDestroy(strings.NewReader(tt.input), &out)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), `Type "yes" to confirm`)
		})
	}
}
