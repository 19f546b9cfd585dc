package util

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("hash verifies against the original password", func(t *testing.T) {
		hash, err := HashPassword("s3cret!")
		require.NoError(t, err)
		assert.True(t, CheckPasswordHash("s3cret!", hash))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		hash, err := HashPassword("s3cret!")
		require.NoError(t, err)
		assert.False(t, CheckPasswordHash("wrong", hash))
	})

	t.Run("rejects malformed hash", func(t *testing.T) {
		assert.False(t, CheckPasswordHash("s3cret!", "not-a-hash"))
	})
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID(uuid.NewString()))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID("{"+uuid.NewString()+"}"))
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)

	t.Run("parses midnight in location", func(t *testing.T) {
		d, err := ParseDate("2024-03-01", loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), d)
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		_, err := ParseDate("03/01/2024", loc)
		assert.Error(t, err)
	})
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	// 2024-03-01 20:00 UTC is 2024-03-02 05:00 KST.
	start, end := DayBounds(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, loc), end)
}
