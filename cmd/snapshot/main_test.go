package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubfeed/models"
)

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "snapshots/snapshot-2024-03-09T14-05-07Z.json.gz", snapshotKey("snapshots/", at))
}

func TestEncodeSnapshot(t *testing.T) {
	in := Snapshot{
		GeneratedAt:  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Source:       "file:citations.bib",
		Publications: []models.Publication{{ID: "a", Title: "A", URL: models.DefaultURL}},
	}
	data, err := encodeSnapshot(in)
	require.NoError(t, err)

	r, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	raw, err := io.ReadAll(r)
	require.NoError(t, err)

	var out Snapshot
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Source, out.Source)
	assert.True(t, in.GeneratedAt.Equal(out.GeneratedAt))
	assert.Equal(t, in.Publications, out.Publications)
}
