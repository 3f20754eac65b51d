package service

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		actor      uint
		owner      uint
		capability Capability
		code       string
	}{
		{"anonymous any", 0, 0, AnyAuthenticated, models.CodeUnauthenticated},
		{"anonymous owner only", 0, 0, OwnerOnly, models.CodeUnauthenticated},
		{"authenticated any", 3, 0, AnyAuthenticated, ""},
		{"owner", 3, 3, OwnerOnly, ""},
		{"not owner", 3, 4, OwnerOnly, models.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.owner, tt.capability)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assertAppErrorCode(t, err, tt.code)
		})
	}
}
