package members

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Service imports the member roster and maintains individual members
type Service struct {
	storage  interfaces.MemberStorage
	validate *validator.Validate
	locks    *common.KeyedMutex
	logger   arbor.ILogger
}

// NewService creates a new member service
func NewService(storage interfaces.MemberStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		validate: validator.New(),
		locks:    common.NewKeyedMutex(),
		logger:   logger,
	}
}

// Import parses the whole CSV before writing, then saves every row in one transaction.
// A missing required column or a write failure leaves the store untouched.
func (s *Service) Import(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	start := time.Now()

	roster, err := parseRoster(r)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Member import rejected")
		return nil, err
	}

	for _, member := range roster.members {
		member.ID = common.NewMemberID()
	}

	if len(roster.members) > 0 {
		if err := s.storage.SaveMembers(ctx, roster.members); err != nil {
			return nil, fmt.Errorf("failed to import members: %w", err)
		}
	}

	s.logger.Info().
		Int("imported", len(roster.members)).
		Int("skipped", roster.skipped).
		Strs("ignored_columns", roster.ignored).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Members imported")

	return &models.ImportResult{
		Imported: len(roster.members),
		Skipped:  roster.skipped,
		Columns:  roster.columns,
		Ignored:  roster.ignored,
	}, nil
}

// Create validates and stores a new member
func (s *Service) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	if member == nil {
		return nil, fmt.Errorf("%w: member is required", common.ErrInvalidInput)
	}
	normalize(member)
	if err := s.validate.Struct(member); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}

	member.ID = common.NewMemberID()
	member.CreatedAt = time.Time{}
	if err := s.storage.SaveMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.logger.Info().Str("member_id", member.ID).Str("name", member.Name).Msg("Member created")
	return member, nil
}

// Get retrieves a member by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Member, error) {
	return s.storage.GetMember(ctx, id)
}

// Update replaces every attribute of an existing member
func (s *Service) Update(ctx context.Context, id string, member *models.Member) (*models.Member, error) {
	if member == nil {
		return nil, fmt.Errorf("%w: member is required", common.ErrInvalidInput)
	}
	normalize(member)
	if err := s.validate.Struct(member); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	existing, err := s.storage.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}

	member.ID = existing.ID
	member.CreatedAt = existing.CreatedAt
	if err := s.storage.SaveMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.logger.Info().Str("member_id", id).Msg("Member updated")
	return member, nil
}

// Delete removes a member
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.storage.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("member_id", id).Msg("Member deleted")
	return nil
}

// List returns a page of members in name order and the unpaged total
func (s *Service) List(ctx context.Context, opts *interfaces.MemberListOptions) ([]*models.Member, int, error) {
	if opts == nil {
		opts = &interfaces.MemberListOptions{}
	}
	page := *opts
	page.Search = strings.TrimSpace(page.Search)
	switch {
	case page.Limit <= 0:
		page.Limit = defaultListLimit
	case page.Limit > maxListLimit:
		page.Limit = maxListLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	members, err := s.storage.ListMembers(ctx, &page)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if page.Search == "" {
		total, err = s.storage.CountMembers(ctx)
	} else {
		var all []*models.Member
		all, err = s.storage.ListMembers(ctx, &interfaces.MemberListOptions{Search: page.Search})
		total = len(all)
	}
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// normalize trims values and turns blank optional strings into nil
func normalize(m *models.Member) {
	m.Name = strings.TrimSpace(m.Name)
	for _, field := range []**string{
		&m.Jabatan, &m.StatusKTA, &m.NoKTA, &m.TanggalLahir, &m.JenisKelamin,
		&m.WhatsApp, &m.Email, &m.Instagram, &m.NamaPerusahaan, &m.JabatanDiPerusahaan,
		&m.KategoriBidangUsaha, &m.AlamatPerusahaan, &m.Website, &m.Twitter, &m.Facebook,
		&m.YouTube, &m.Position, &m.Organization, &m.MembershipType, &m.Status, &m.Region,
	} {
		if *field != nil {
			*field = models.StringPtr(**field)
		}
	}
	if m.Position == nil {
		m.Position = m.Jabatan
	}
	if m.Organization == nil {
		m.Organization = m.KategoriBidangUsaha
	}
}
