package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCommandWritesCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ships.csv")
	var stdout bytes.Buffer

	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"template", "ships", "--format", "csv", "-o", out})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "name,registration_number,owner_name,captain_name"))
	assert.Contains(t, stdout.String(), "wrote "+out)
}

func TestTemplateCommandRejectsUnknownResource(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"template", "harbours", "-o", filepath.Join(t.TempDir(), "x.xlsx")})
	assert.Error(t, root.Execute())
}

func TestImportCommandRequiresResource(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"import", "ships.xlsx"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource")
}
