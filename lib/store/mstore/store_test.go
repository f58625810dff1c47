package mstore

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/store"
	storetesting "github.com/ValentinKolb/qpkv/lib/store/testing"
	"github.com/ValentinKolb/qpkv/lib/table"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	storetesting.RunTableStoreTests(t, "mstore", func(t *testing.T) store.ITableStore {
		return NewMemoryStore()
	})
}

func TestUnknownTable(t *testing.T) {
	s := NewMemoryStore(table.Users)
	_, err := s.GetItem(table.Tweets, key.Min)
	assert.True(t, errors.Is(err, ErrTableNotFound))

	err = s.PutItem(table.Follows, common.Item{})
	assert.True(t, errors.Is(err, ErrTableNotFound))

	_, err = s.ScanItem(table.Tweets, nil, false, 1)
	assert.True(t, errors.Is(err, ErrTableNotFound))

	_, err = s.GetItem(table.Users, key.Min)
	require.NoError(t, err)
}
