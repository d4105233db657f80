package models

import (
	"strings"
	"time"
)

// UnspecifiedBucket is the grouping key for missing member attributes
const UnspecifiedBucket = "Tidak Diketahui"

// Member is a single organisation member (pengurus).
// Optional attributes are pointers; nil means the value was never provided.
// Validation tags apply to API create and update, not to CSV import.
type Member struct {
	// Identity
	ID   string `json:"id"` // mbr_{uuid}
	No   *int   `json:"no,omitempty"`
	Name string `json:"name" validate:"required,max=200"`

	// Role and card status
	Jabatan   *string `json:"jabatan,omitempty"`
	StatusKTA *string `json:"status_kta,omitempty"`
	NoKTA     *string `json:"no_kta,omitempty"`

	// Demographic
	TanggalLahir *string `json:"tanggal_lahir,omitempty"`
	Usia         *int    `json:"usia,omitempty" validate:"omitempty,gte=0,lte=150"`
	JenisKelamin *string `json:"jenis_kelamin,omitempty"`

	// Contact
	WhatsApp  *string `json:"whatsapp,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Instagram *string `json:"instagram,omitempty"`

	// Company
	NamaPerusahaan         *string `json:"nama_perusahaan,omitempty"`
	JabatanDiPerusahaan    *string `json:"jabatan_dlm_akta_perusahaan,omitempty"`
	KategoriBidangUsaha    *string `json:"kategori_bidang_usaha,omitempty"`
	AlamatPerusahaan       *string `json:"alamat_perusahaan,omitempty"`
	PerusahaanBerdiriSejak *int    `json:"perusahaan_berdiri_sejak,omitempty" validate:"omitempty,gte=1800,lte=2100"`
	JumlahKaryawan         *int    `json:"jmlh_karyawan,omitempty" validate:"omitempty,gte=0"`

	// Web and social
	Website  *string `json:"website,omitempty"`
	Twitter  *string `json:"twitter,omitempty"`
	Facebook *string `json:"facebook,omitempty"`
	YouTube  *string `json:"youtube,omitempty"`

	// Membership
	Position       *string `json:"position,omitempty"`
	Organization   *string `json:"organization,omitempty"`
	MembershipType *string `json:"membership_type,omitempty"`
	Status         *string `json:"status,omitempty"`
	Region         *string `json:"region,omitempty"`
	EntryYear      *int    `json:"entry_year,omitempty" validate:"omitempty,gte=1900,lte=2100"`

	// Timestamps
	JoinedDate *time.Time `json:"joined_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Bucket returns the grouping key for an optional string, folding blanks into UnspecifiedBucket
func Bucket(v *string) string {
	if v == nil {
		return UnspecifiedBucket
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return UnspecifiedBucket
	}
	return s
}

// StringOr dereferences v or returns fallback when nil or blank
func StringOr(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}

// StringPtr returns nil for blank strings
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}

// MemberStats is the output of the statistics engine.
// Every grouping sums to Total.
type MemberStats struct {
	Total            int            `json:"total"`
	ByRole           map[string]int `json:"by_role"`
	ByIndustry       map[string]int `json:"by_industry"`
	ByCardStatus     map[string]int `json:"by_card_status"`
	ByGender         map[string]int `json:"by_gender"`
	EmployeeTotal    int            `json:"employee_total"`
	EmployeeReported int            `json:"employee_reported"`
}

// GenderRatio splits members into male, female and unspecified with percentages
type GenderRatio struct {
	Male             int     `json:"male"`
	Female           int     `json:"female"`
	Unspecified      int     `json:"unspecified"`
	Total            int     `json:"total"`
	MalePercentage   float64 `json:"male_percentage"`
	FemalePercentage float64 `json:"female_percentage"`
}

// ImportResult reports a completed CSV import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"` // Rows without a name
	Columns  []string `json:"columns"`
	Ignored  []string `json:"ignored_columns,omitempty"`
}
