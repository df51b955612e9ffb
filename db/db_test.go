package db

import (
	"testing"

	"palace-guide/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleUsers(t *testing.T) {
	users, err := SampleUsers()
	require.NoError(t, err)
	require.Len(t, users, 5)

	assert.Equal(t, "user1@example.com", users[0].Email)
	assert.Equal(t, "김철수", users[0].Name)
	assert.Equal(t, "user5", users[4].Username())
	for i, u := range users {
		assert.NotContains(t, u.Password, "password", "password must be hashed")
		assert.True(t, utils.CheckPassword(u.Password, "password"+string(rune('1'+i))))
	}
}
