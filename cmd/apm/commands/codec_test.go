package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCodec_Encode(t *testing.T) {
	out, err := run(t, "codec", "encode", "2210012345")
	require.NoError(t, err)
	assert.Contains(t, out, "date word:      0x16A0 (5792)")
	assert.Contains(t, out, "serial word:    12345")
}

func TestCodec_EncodeInvalid(t *testing.T) {
	_, err := run(t, "codec", "encode", "2213000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month 13")
}

func TestCodec_Decode(t *testing.T) {
	out, err := run(t, "codec", "decode", "0x16A0", "12345")
	require.NoError(t, err)
	assert.Contains(t, out, "factory number: 2210012345")
}

func TestCodec_ArgCount(t *testing.T) {
	_, err := run(t, "codec", "decode", "0x16A0")
	assert.Error(t, err)

	_, err = run(t, "codec", "encode")
	assert.Error(t, err)
}
