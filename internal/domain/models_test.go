package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ppm/internal/domain"
)

func TestCheckPublicLocation(t *testing.T) {
	tests := []struct {
		location string
		valid    bool
	}{
		{"data/ejemplo_analisis.json", true},
		{"/data/jalisco.json", true},
		{"public/Jalisco/Guadalajara/obra-7/analysis.json?v=2", true},
		{"", false},
		{"   ", false},
		{"http://169.254.169.254/latest/meta-data", false},
		{"https://internal.example/admin", false},
		{"HTTP://internal.example/admin", false},
		{"//internal.example/admin", false},
		{"file:///etc/passwd", false},
		{"gopher://internal:70/x", false},
		{`\\internal.example\share`, false},
		{"data/a.json\r\nHost: evil", false},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			err := domain.CheckPublicLocation(tt.location)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidPublicLocation)
		})
	}
}
