package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() CitizenRecord {
	return CitizenRecord{
		UserID:    "U1",
		CitizenID: "1234567890123",
		Firstname: "Somchai",
		Lastname:  "Srisuk",
		Mobile:    "0812345678",
		Email:     "s@x.com",
	}
}

func TestCitizenRecordValidate(t *testing.T) {
	t.Run("valid record passes", func(t *testing.T) {
		require.NoError(t, validRecord().Validate())
	})

	t.Run("optional contact fields may be empty", func(t *testing.T) {
		r := validRecord()
		r.Mobile, r.Email = "", ""
		require.NoError(t, r.Validate())
	})

	t.Run("missing required fields are reported together", func(t *testing.T) {
		err := CitizenRecord{UserID: "U1"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "citizenId is required")
		assert.Contains(t, err.Error(), "firstname is required")
		assert.Contains(t, err.Error(), "lastname is required")
		assert.NotContains(t, err.Error(), "userId is required")
	})

	t.Run("length limits count runes", func(t *testing.T) {
		r := validRecord()
		r.Firstname = strings.Repeat("ก", MaxNameLen)
		require.NoError(t, r.Validate())

		r.CitizenID = "12345678901234"
		err := r.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "citizenId exceeds 13")
	})
}

func TestCitizenRecordNormalize(t *testing.T) {
	r := CitizenRecord{UserID: " U1 ", CitizenID: "1234567890123\n", Firstname: "  A", Lastname: "B  "}
	r.Normalize()
	assert.Equal(t, "U1", r.UserID)
	assert.Equal(t, "1234567890123", r.CitizenID)
	assert.Equal(t, "A", r.Firstname)
	assert.Equal(t, "B", r.Lastname)
}
