package badger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// MemberStorage implements the MemberStorage interface for Badger
type MemberStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMemberStorage creates a new MemberStorage instance
func NewMemberStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MemberStorage {
	return &MemberStorage{
		db:     db,
		logger: logger,
	}
}

func stampMember(member *models.Member, now time.Time) error {
	if member.ID == "" {
		return fmt.Errorf("member ID is required")
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now
	return nil
}

func (s *MemberStorage) SaveMember(ctx context.Context, member *models.Member) error {
	if err := stampMember(member, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.db.Store().Upsert(member.ID, member); err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}

// SaveMembers writes every member inside one Badger transaction
func (s *MemberStorage) SaveMembers(ctx context.Context, members []*models.Member) error {
	now := time.Now().UTC()
	for _, member := range members {
		if err := stampMember(member, now); err != nil {
			return err
		}
	}

	err := s.db.Update(func(tx *badgerdb.Txn) error {
		for _, member := range members {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.db.Store().TxUpsert(tx, member.ID, member); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %d members: %w", len(members), err)
	}

	s.logger.Debug().Int("count", len(members)).Msg("Members saved in single transaction")
	return nil
}

func (s *MemberStorage) GetMember(ctx context.Context, id string) (*models.Member, error) {
	var member models.Member
	if err := s.db.Store().Get(id, &member); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("member %s: %w", id, common.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

func (s *MemberStorage) DeleteMember(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Member{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("member %s: %w", id, common.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

func (s *MemberStorage) ListMembers(ctx context.Context, opts *interfaces.MemberListOptions) ([]*models.Member, error) {
	query := badgerhold.Where("ID").Ne("")
	if opts != nil && opts.Search != "" {
		regex, err := regexp.Compile("(?i)" + regexp.QuoteMeta(opts.Search))
		if err != nil {
			return nil, fmt.Errorf("invalid search: %w", err)
		}
		query = query.And("Name").RegExp(regex)
	}

	var members []models.Member
	if err := s.db.Store().Find(&members, query); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	result := byName(members)
	if opts != nil {
		result = paginate(result, opts.Offset, opts.Limit)
	}
	return result, nil
}

func (s *MemberStorage) SearchMembersByName(ctx context.Context, name string, limit int) ([]*models.Member, error) {
	return s.ListMembers(ctx, &interfaces.MemberListOptions{Search: name, Limit: limit})
}

func (s *MemberStorage) CountMembers(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Member{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return int(count), nil
}

// SnapshotMembers reads all members within one read transaction so concurrent
// writes are either fully visible or not at all
func (s *MemberStorage) SnapshotMembers(ctx context.Context) ([]*models.Member, error) {
	var members []models.Member
	err := s.db.View(func(tx *badgerdb.Txn) error {
		return s.db.Store().TxFind(tx, &members, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read member snapshot: %w", err)
	}
	return byName(members), nil
}

// byName orders members by folded name, then id
func byName(members []models.Member) []*models.Member {
	result := make([]*models.Member, len(members))
	keys := make(map[string]string, len(members))
	for i := range members {
		result[i] = &members[i]
		keys[members[i].ID] = strings.TrimSpace(common.Fold(members[i].Name))
	}
	sort.SliceStable(result, func(i, j int) bool {
		ki, kj := keys[result[i].ID], keys[result[j].ID]
		if ki == kj {
			return result[i].ID < result[j].ID
		}
		return ki < kj
	})
	return result
}
