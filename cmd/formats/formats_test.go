package formats_test

import (
	"bytes"
	"strings"
	"testing"

	"fjacquet/statement-csv/cmd/formats"
	"fjacquet/statement-csv/internal/format"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatsCommand_Metadata(t *testing.T) {
	assert.Equal(t, "formats", formats.Cmd.Use)
	assert.NotNil(t, formats.Cmd.Run)
}

func TestList(t *testing.T) {
	reg, err := format.NewRegistry()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, formats.List(&buf, reg))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "NAME"))
	for _, name := range []string{"mbank-dump", "mbank-dump-open", "mbank-csv", "raiffeisen-xls"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "built-in")
}
