package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/coldvault/internal/client/client"
	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/common"
	"github.com/dmitrijs2005/coldvault/internal/logging"
)

// VaultService covers the vault and archive calls that need no job.
type VaultService interface {
	CreateVault(ctx context.Context, vault string) (string, error)
	ListVaults(ctx context.Context) ([]client.VaultSummary, error)
	DeleteArchive(ctx context.Context, vault, archiveID string) error

	// ResolveArchive maps an archive id or description to an archive id
	// using the vault's local inventory. Without an inventory ref is
	// taken to be an id.
	ResolveArchive(ctx context.Context, vault, ref string) (string, error)
}

type vaultService struct {
	client   client.Client
	log      logging.Logger
	stateDir string
}

func NewVaultService(c client.Client, log logging.Logger, stateDir string) VaultService {
	return &vaultService{client: c, log: log, stateDir: stateDir}
}

func (s *vaultService) CreateVault(ctx context.Context, vault string) (string, error) {
	location, err := s.client.CreateVault(ctx, vault)
	if err != nil {
		return "", err
	}
	s.log.Info(ctx, "vault created", "vault", vault, "location", location)
	return location, nil
}

func (s *vaultService) ListVaults(ctx context.Context) ([]client.VaultSummary, error) {
	return s.client.ListVaults(ctx)
}

func (s *vaultService) DeleteArchive(ctx context.Context, vault, archiveID string) error {
	if err := s.client.DeleteArchive(ctx, vault, archiveID); err != nil {
		return err
	}
	s.log.Info(ctx, "archive deleted", "vault", vault, "archive_id", archiveID)
	return nil
}

func (s *vaultService) ResolveArchive(ctx context.Context, vault, ref string) (string, error) {
	inv, err := models.LoadInventory(InventoryPath(s.stateDir, vault))
	if errors.Is(err, common.ErrNoInventory) {
		s.log.Debug(ctx, "no local inventory, using reference as archive id", "vault", vault)
		return ref, nil
	}
	if err != nil {
		return "", err
	}

	item, err := inv.Find(ref)
	if err != nil {
		return "", err
	}
	return item.ArchiveID, nil
}
