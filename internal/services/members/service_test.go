package members

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/interfaces"
	"github.com/ternarybob/kintari/internal/models"
	"github.com/ternarybob/kintari/internal/storage/badger"
)

const rosterHeader = "no, nama ,jabatan,status_kta,no_kta,usia,jenis_kelamin,whatsapp,email,nama_perusahaan,jabatan_dlm_akta_perusahaan,kategori_bidang_usaha,jmlh_karyawan,catatan\n"

func newTestService(t *testing.T) (*Service, interfaces.MemberStorage) {
	t.Helper()
	logger := arbor.NewLogger()
	manager, err := badger.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return NewService(manager.MemberStorage(), logger), manager.MemberStorage()
}

func TestImport(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	csv := rosterHeader +
		"1,Ibrahim Hasan,Ketum,Aktif,KTA-001,35,Laki-laki,081234567890,ibrahim@example.com,PT Maju,Direktur,Property,120,x\n" +
		"2,Siti Aminah,Bendum,,,29 tahun,Perempuan,,,,,Kuliner,,\n" +
		"3,,Anggota,,,,,,,,,,,\n"

	result, err := service.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"catatan"}, result.Ignored)
	assert.Contains(t, result.Columns, "nama")

	members, err := storage.SnapshotMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)

	ibrahim := members[0]
	assert.Equal(t, "Ibrahim Hasan", ibrahim.Name)
	assert.True(t, strings.HasPrefix(ibrahim.ID, "mbr_"))
	assert.Equal(t, 1, *ibrahim.No)
	assert.Equal(t, "Ketum", *ibrahim.Jabatan)
	assert.Equal(t, "Ketum", *ibrahim.Position)
	assert.Equal(t, "Property", *ibrahim.Organization)
	assert.Equal(t, 35, *ibrahim.Usia)
	assert.Equal(t, 120, *ibrahim.JumlahKaryawan)

	siti := members[1]
	assert.Equal(t, "Siti Aminah", siti.Name)
	assert.Nil(t, siti.StatusKTA)
	assert.Nil(t, siti.Usia, "non-digit integers are stored as nil")
	assert.Nil(t, siti.Email)
	assert.Nil(t, siti.JumlahKaryawan)
	assert.Equal(t, "Kuliner", *siti.KategoriBidangUsaha)
}

func TestImport_MissingColumnsPersistsNothing(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	csv := "nama,jabatan,usia\nIbrahim,Ketum,35\n"
	_, err := service.Import(ctx, strings.NewReader(csv))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrImportSchemaMismatch)
	for _, column := range []string{"status_kta", "jenis_kelamin", "whatsapp", "email", "jmlh_karyawan"} {
		assert.Contains(t, err.Error(), column)
	}

	count, err := storage.CountMembers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImport_HeadersCaseSensitive(t *testing.T) {
	service, _ := newTestService(t)
	csv := strings.Replace(rosterHeader, "jabatan,", "Jabatan,", 1) + "1,A,B,,,,,,,,,,,\n"

	_, err := service.Import(context.Background(), strings.NewReader(csv))
	assert.ErrorIs(t, err, common.ErrImportSchemaMismatch)
}

func TestImport_EmptyAndMalformed(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Import(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, common.ErrImportSchemaMismatch)

	_, err = service.Import(context.Background(), strings.NewReader(rosterHeader+"1,\"unterminated\n"))
	assert.ErrorIs(t, err, common.ErrInvalidUpload)
}

func TestImport_ByteOrderMark(t *testing.T) {
	service, _ := newTestService(t)
	// Header starts with the nama column, preceded by a UTF-8 byte order mark
	csv := "\ufeff" + strings.TrimPrefix(rosterHeader, "no,") + "Ibrahim,Ketum,,,,,,,,,,,\n"

	result, err := service.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestParseDigits(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"42", models.IntPtr(42)},
		{" 7 ", models.IntPtr(7)},
		{"", nil},
		{"-3", nil},
		{"1.000", nil},
		{"12a", nil},
		{"٣", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDigits(tt.in), tt.in)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, &models.Member{
		Name:                "  Budi Santoso ",
		Jabatan:             models.StringPtr("Sekum"),
		Email:               models.StringPtr("budi@example.com"),
		KategoriBidangUsaha: models.StringPtr("Teknologi"),
		Instagram:           new(string),
	})
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", created.Name)
	assert.Equal(t, "Sekum", *created.Position)
	assert.Equal(t, "Teknologi", *created.Organization)
	assert.Nil(t, created.Instagram)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := service.Update(ctx, created.ID, &models.Member{
		Name:    "Budi Santoso",
		Jabatan: models.StringPtr("Ketum"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Nil(t, updated.Email)

	got, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ketum", *got.Jabatan)

	require.NoError(t, service.Delete(ctx, created.ID))
	_, err = service.Get(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
	assert.ErrorIs(t, service.Delete(ctx, created.ID), common.ErrRecordNotFound)

	_, err = service.Update(ctx, "mbr_missing", &models.Member{Name: "X"})
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
}

func TestCreate_Validation(t *testing.T) {
	service, _ := newTestService(t)

	tests := []struct {
		name   string
		member *models.Member
		field  string
	}{
		{"missing name", &models.Member{Name: "  "}, "Name"},
		{"bad email", &models.Member{Name: "A", Email: models.StringPtr("not-an-email")}, "Email"},
		{"negative age", &models.Member{Name: "A", Usia: models.IntPtr(-1)}, "Usia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), tt.member)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidInput)

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}

	_, err := service.Create(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestList(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Citra", "Andi", "Bayu", "Andini"} {
		_, err := service.Create(ctx, &models.Member{Name: name})
		require.NoError(t, err)
	}

	members, total, err := service.List(ctx, &interfaces.MemberListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, members, 2)
	assert.Equal(t, "Andi", members[0].Name)
	assert.Equal(t, "Andini", members[1].Name)

	members, total, err = service.List(ctx, &interfaces.MemberListOptions{Search: "andi", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, members, 1)
}
