package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectionAccess(t *testing.T) {
	private := NewCollection("c1", "owner", "Notes", "", false, time.Now())
	shared := NewCollection("c2", "owner", "Public", "", true, time.Now())

	assert.True(t, private.OwnedBy("owner"))
	assert.True(t, private.ReadableBy("owner"))
	assert.False(t, private.ReadableBy("stranger"))

	assert.False(t, shared.OwnedBy("stranger"))
	assert.True(t, shared.ReadableBy("stranger"))
}

func TestValidateCollection(t *testing.T) {
	tests := []struct {
		name       string
		collection *Collection
		errMsg     string
	}{
		{"valid", NewCollection("c1", "u1", "Notes", "", false, time.Now()), ""},
		{"nil", nil, "nil"},
		{"missing ID", &Collection{UserID: "u1", Name: "Notes"}, "ID"},
		{"missing user", &Collection{ID: "c1", Name: "Notes"}, "UserID"},
		{"missing name", &Collection{ID: "c1", UserID: "u1"}, "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollection(tt.collection)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestUserCaller(t *testing.T) {
	u := NewUser("u1", "ada", true, time.Now())
	assert.Equal(t, Caller{UserID: "u1", IsPro: true}, u.Caller())
	assert.NoError(t, ValidateUser(u))
	assert.Error(t, ValidateUser(&User{ID: "u1"}))
}
