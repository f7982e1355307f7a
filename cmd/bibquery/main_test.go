package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubfeed/models"
)

const cliBib = `@article{a, title = {Alpha}, author = {Ann}, year = {2021}, note = {Cited by 3}}
@article{b, title = {Beta}, author = {Bob}, year = {2020}}
@article{c, title = {Gamma}, author = {Cid}, year = {2019}}`

func writeBib(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "citations.bib")
	require.NoError(t, os.WriteFile(path, []byte(cliBib), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "parse", writeBib(t))
	require.NoError(t, err)

	var pubs []models.Publication
	require.NoError(t, json.Unmarshal([]byte(out), &pubs))
	require.Len(t, pubs, 3)
	assert.Equal(t, "Alpha", pubs[0].Title)
	assert.Equal(t, 3, pubs[0].Citations)
}

func TestQueryCommand(t *testing.T) {
	out, err := execute(t, "query", writeBib(t), "--group", "none", "--sort", "title", "--direction", "asc", "--limit", "2")
	require.NoError(t, err)

	var page struct {
		Data       []models.Publication `json:"data"`
		Pagination models.Pagination    `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Gamma", page.Data[0].Title)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestParseCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "parse", filepath.Join(t.TempDir(), "nope.bib"))
	assert.Error(t, err)
}
