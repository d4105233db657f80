package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db         *BadgerDB
	document   interfaces.DocumentStorage
	member     interfaces.MemberStorage
	collection interfaces.CollectionStorage
	logger     arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:         db,
		document:   NewDocumentStorage(db, logger),
		member:     NewMemberStorage(db, logger),
		collection: NewCollectionStorage(db, logger),
		logger:     logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// DocumentStorage returns the Document storage interface
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.document
}

// MemberStorage returns the Member storage interface
func (m *Manager) MemberStorage() interfaces.MemberStorage {
	return m.member
}

// CollectionStorage returns the Collection storage interface
func (m *Manager) CollectionStorage() interfaces.CollectionStorage {
	return m.collection
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
