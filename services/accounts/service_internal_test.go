package accounts

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDummyPasswordHashIsWellFormed(t *testing.T) {
	cost, err := bcrypt.Cost(dummyPasswordHash)
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)

	// A full comparison must run, not fail at parse time.
	err = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte("wrong-password"))
	require.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)
}
