package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Perusahaan", "perusahaan"},
		{"Pérusahaân", "perusahaan"},
		{"ÇAFÉ", "cafe"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Ibrahim Imaduddin Islam", "IBRAHIM"))
	assert.True(t, ContainsFold("Jabatannya apa?", "jabatannya"))
	assert.False(t, ContainsFold("Budi", "ibrahim"))
}
