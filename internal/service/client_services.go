package service

import (
	"github.com/MKhiriev/go-lst-sync/internal/adapter"
	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/crypto"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/store"
)

// ClientServices groups the sync daemon's services.
type ClientServices struct {
	Documents DocumentService
	Sync      SyncService
	Watch     WatchService
	ACL       ACLService
	SyncJob   ClientSyncJob
}

// ClientIdentity names the device and the relay identity that owns the
// documents it creates.
type ClientIdentity struct {
	DeviceID string
	Owner    string
}

func NewClientServices(
	storages *store.ClientStorages,
	dialer adapter.RelayDialer,
	aclClient adapter.ACLClient,
	cipher crypto.Cipher,
	cfg *config.ClientConfig,
	identity ClientIdentity,
	logger *logger.Logger,
) *ClientServices {
	documents := NewDocumentService(storages.Documents, cfg.Sync, identity.DeviceID, identity.Owner, logger)
	syncSvc := NewSyncService(documents, storages.Documents, dialer, cipher, cfg, logger)
	aclSvc := NewACLService(storages.Documents, aclClient, logger)

	return &ClientServices{
		Documents: documents,
		Sync:      syncSvc,
		Watch:     NewWatchService(documents, cfg.Sync.ContentDir, cfg.Sync.Debounce, logger),
		ACL:       aclSvc,
		SyncJob:   NewClientSyncJob(syncSvc, aclSvc, logger),
	}
}
