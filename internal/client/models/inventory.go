package models

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/coldvault/internal/common"
)

// ArchiveItem is one archive listed in a vault inventory.
type ArchiveItem struct {
	ArchiveID          string `json:"ArchiveId"`
	ArchiveDescription string `json:"ArchiveDescription"`
	CreationDate       string `json:"CreationDate"`
	Size               int64  `json:"Size"`
	SHA256TreeHash     string `json:"SHA256TreeHash"`
}

// Inventory is the JSON document an inventory-retrieval job produces.
type Inventory struct {
	VaultARN      string        `json:"VaultARN"`
	InventoryDate string        `json:"InventoryDate"`
	ArchiveList   []ArchiveItem `json:"ArchiveList"`
}

// LoadInventory reads an inventory file written by a completed inventory job.
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrNoInventory, path)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrIO, err)
	}

	var inv Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory %s: %w", path, err)
	}
	return &inv, nil
}

// Find resolves an archive by exact id, or by description when no id matches.
// Descriptions must be unique to resolve.
func (inv *Inventory) Find(ref string) (*ArchiveItem, error) {
	for i := range inv.ArchiveList {
		if inv.ArchiveList[i].ArchiveID == ref {
			return &inv.ArchiveList[i], nil
		}
	}

	var found *ArchiveItem
	for i := range inv.ArchiveList {
		if strings.EqualFold(inv.ArchiveList[i].ArchiveDescription, ref) {
			if found != nil {
				return nil, fmt.Errorf("%w: description %q is ambiguous", common.ErrArchiveNotFound, ref)
			}
			found = &inv.ArchiveList[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", common.ErrArchiveNotFound, ref)
	}
	return found, nil
}
