package convert_test

import (
	"testing"

	"fjacquet/statement-csv/cmd/convert"

	"github.com/stretchr/testify/assert"
)

func TestConvertCommand_Metadata(t *testing.T) {
	assert.Equal(t, "convert", convert.Cmd.Use)
	assert.Contains(t, convert.Cmd.Long, "Example")
	f := convert.Cmd.Flags().Lookup("format")
	if assert.NotNil(t, f) {
		assert.Equal(t, "f", f.Shorthand)
	}
}

func TestNewFormatCommand(t *testing.T) {
	cmd := convert.NewFormatCommand("mybank", "Convert my bank", "Long help", "my-format")
	assert.Equal(t, "mybank", cmd.Use)
	assert.Equal(t, "Convert my bank", cmd.Short)
	assert.Equal(t, "Long help", cmd.Long)
	assert.NotNil(t, cmd.Run)
}
