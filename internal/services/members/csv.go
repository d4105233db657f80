package members

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
)

// RequiredColumns must all be present in an import header
var RequiredColumns = []string{
	"nama",
	"jabatan",
	"status_kta",
	"usia",
	"jenis_kelamin",
	"whatsapp",
	"email",
	"nama_perusahaan",
	"jabatan_dlm_akta_perusahaan",
	"kategori_bidang_usaha",
	"jmlh_karyawan",
}

// OptionalColumns are read when present
var OptionalColumns = []string{
	"no",
	"no_kta",
	"tanggal_lahir",
	"instagram",
	"alamat_perusahaan",
	"perusahaan_berdiri_sejak",
	"website",
	"twitter",
	"facebook",
	"youtube",
}

type setter func(m *models.Member, value string)

func stringField(field func(m *models.Member) **string) setter {
	return func(m *models.Member, value string) {
		*field(m) = models.StringPtr(value)
	}
}

func intField(field func(m *models.Member) **int) setter {
	return func(m *models.Member, value string) {
		*field(m) = parseDigits(value)
	}
}

var columnSetters = map[string]setter{
	"no":   intField(func(m *models.Member) **int { return &m.No }),
	"nama": func(m *models.Member, value string) { m.Name = strings.TrimSpace(value) },
	"jabatan": func(m *models.Member, value string) {
		m.Jabatan = models.StringPtr(value)
		m.Position = models.StringPtr(value)
	},
	"status_kta":                  stringField(func(m *models.Member) **string { return &m.StatusKTA }),
	"no_kta":                      stringField(func(m *models.Member) **string { return &m.NoKTA }),
	"tanggal_lahir":               stringField(func(m *models.Member) **string { return &m.TanggalLahir }),
	"usia":                        intField(func(m *models.Member) **int { return &m.Usia }),
	"jenis_kelamin":               stringField(func(m *models.Member) **string { return &m.JenisKelamin }),
	"whatsapp":                    stringField(func(m *models.Member) **string { return &m.WhatsApp }),
	"email":                       stringField(func(m *models.Member) **string { return &m.Email }),
	"instagram":                   stringField(func(m *models.Member) **string { return &m.Instagram }),
	"nama_perusahaan":             stringField(func(m *models.Member) **string { return &m.NamaPerusahaan }),
	"jabatan_dlm_akta_perusahaan": stringField(func(m *models.Member) **string { return &m.JabatanDiPerusahaan }),
	"kategori_bidang_usaha": func(m *models.Member, value string) {
		m.KategoriBidangUsaha = models.StringPtr(value)
		m.Organization = models.StringPtr(value)
	},
	"alamat_perusahaan":        stringField(func(m *models.Member) **string { return &m.AlamatPerusahaan }),
	"perusahaan_berdiri_sejak": intField(func(m *models.Member) **int { return &m.PerusahaanBerdiriSejak }),
	"jmlh_karyawan":            intField(func(m *models.Member) **int { return &m.JumlahKaryawan }),
	"website":                  stringField(func(m *models.Member) **string { return &m.Website }),
	"twitter":                  stringField(func(m *models.Member) **string { return &m.Twitter }),
	"facebook":                 stringField(func(m *models.Member) **string { return &m.Facebook }),
	"youtube":                  stringField(func(m *models.Member) **string { return &m.YouTube }),
}

// parseDigits parses a value made only of ASCII digits; anything else is nil
func parseDigits(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

// parsedRoster is a fully parsed CSV, not yet persisted
type parsedRoster struct {
	members []*models.Member
	columns []string
	ignored []string
	skipped int
}

// parseRoster reads the whole CSV. Any header or syntax problem rejects the file.
func parseRoster(r io.Reader) (*parsedRoster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", common.ErrImportSchemaMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable header: %v", common.ErrInvalidUpload, err)
	}

	index := make(map[string]int, len(header))
	roster := &parsedRoster{}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; dup || name == "" {
			continue
		}
		if _, known := columnSetters[name]; !known {
			roster.ignored = append(roster.ignored, name)
			continue
		}
		index[name] = i
		roster.columns = append(roster.columns, name)
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", common.ErrImportSchemaMismatch, strings.Join(missing, ", "))
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidUpload, err)
		}

		member := &models.Member{}
		for name, i := range index {
			if i < len(record) {
				columnSetters[name](member, record[i])
			}
		}
		if member.Name == "" {
			roster.skipped++
			continue
		}
		roster.members = append(roster.members, member)
	}

	return roster, nil
}
