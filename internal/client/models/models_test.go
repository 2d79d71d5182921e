package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/treehash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultFromLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
		wantErr  bool
	}{
		{name: "job location", location: "/111122223333/vaults/photos/jobs/HkF9p6o7yjhFx", want: "photos"},
		{name: "archive location", location: "/-/vaults/backups/archives/NkbByEejwEggmBz2f", want: "backups"},
		{name: "empty", location: "", wantErr: true},
		{name: "relative", location: "111122223333/vaults/photos", wantErr: true},
		{name: "missing vaults segment", location: "/111122223333/buckets/photos/jobs/x", wantErr: true},
		{name: "empty vault", location: "/111122223333/vaults//jobs/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VaultFromLocation(tt.location)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrMalformedLocation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitiatedJob_Expired(t *testing.T) {
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	job := InitiatedJob{JobID: "j", CreatedAt: created}

	assert.False(t, job.Expired(created.Add(23*time.Hour), 24*time.Hour))
	assert.True(t, job.Expired(created.Add(24*time.Hour), 24*time.Hour))
	assert.True(t, job.Expired(created.Add(72*time.Hour), 24*time.Hour))
}

func TestJobType_ServiceType(t *testing.T) {
	assert.Equal(t, "inventory-retrieval", JobTypeInventory.ServiceType())
	assert.Equal(t, "archive-retrieval", JobTypeRetrieval.ServiceType())
}

func TestManifest_LeavesFlattenInOrder(t *testing.T) {
	a, b, c := treehash.Sum([]byte("a")), treehash.Sum([]byte("b")), treehash.Sum([]byte("c"))
	m := &Manifest{Parts: []Part{
		{Index: 0, SubDigests: []treehash.Digest{a, b}},
		{Index: 1, SubDigests: []treehash.Digest{c}},
	}}

	assert.Equal(t, []treehash.Digest{a, b, c}, m.Leaves())

	got, err := m.TreeHash()
	require.NoError(t, err)
	want, err := treehash.Reduce([]treehash.Digest{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPart_End(t *testing.T) {
	p := Part{Offset: 2 * common.MiB, Length: common.MiB}
	assert.Equal(t, 3*common.MiB-1, p.End())
}

const inventoryJSON = `{
  "VaultARN": "arn:aws:glacier:eu-west-1:111122223333:vaults/photos",
  "InventoryDate": "2026-10-01T00:00:00Z",
  "ArchiveList": [
    {"ArchiveId": "id-1", "ArchiveDescription": "2024 trip", "CreationDate": "2025-01-01T00:00:00Z", "Size": 10, "SHA256TreeHash": "aa"},
    {"ArchiveId": "id-2", "ArchiveDescription": "taxes", "CreationDate": "2025-02-01T00:00:00Z", "Size": 20, "SHA256TreeHash": "bb"},
    {"ArchiveId": "id-3", "ArchiveDescription": "taxes", "CreationDate": "2025-03-01T00:00:00Z", "Size": 30, "SHA256TreeHash": "cc"}
  ]
}`

func TestLoadInventoryAndFind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte(inventoryJSON), 0o600))

	inv, err := LoadInventory(path)
	require.NoError(t, err)
	require.Len(t, inv.ArchiveList, 3)

	item, err := inv.Find("id-2")
	require.NoError(t, err)
	assert.Equal(t, int64(20), item.Size)

	item, err = inv.Find("2024 TRIP")
	require.NoError(t, err)
	assert.Equal(t, "id-1", item.ArchiveID)

	_, err = inv.Find("taxes")
	require.ErrorIs(t, err, common.ErrArchiveNotFound)

	_, err = inv.Find("nope")
	require.ErrorIs(t, err, common.ErrArchiveNotFound)
}

func TestLoadInventory_Missing(t *testing.T) {
	_, err := LoadInventory(filepath.Join(t.TempDir(), "inventory.json"))
	require.ErrorIs(t, err, common.ErrNoInventory)
}
