package carrier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	ids []int64
	err error
}

func (s stubSource) CarrierIDs(context.Context) ([]int64, error) {
	return s.ids, s.err
}

func TestAllowlist(t *testing.T) {
	a := NewAllowlist(3, 1, 2, 2)
	assert.Equal(t, 3, a.Len())
	assert.True(t, a.Contains(1))
	assert.False(t, a.Contains(4))
	assert.False(t, a.Contains(0))
	assert.True(t, a.Admits(0))
	assert.True(t, a.Admits(2))
	assert.False(t, a.Admits(9))
}

func TestLoadAllowlist(t *testing.T) {
	a, err := LoadAllowlist(context.Background(), stubSource{ids: []int64{5, 6}})
	require.NoError(t, err)
	assert.True(t, a.Contains(6))
	assert.Equal(t, 2, a.Len())

	_, err = LoadAllowlist(context.Background(), stubSource{err: errors.New("db down")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier: load allowlist")
}

func TestEmptyAllowlistAdmitsOnlySentinel(t *testing.T) {
	a := NewAllowlist()
	assert.Equal(t, 0, a.Len())
	assert.True(t, a.Admits(0))
	assert.False(t, a.Admits(1))
}
