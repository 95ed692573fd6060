package segment

import (
	"errors"
	"testing"

	"github.com/rivergraph/mc-router/mcerr"
	"github.com/stretchr/testify/require"
)

func rec(id, down ID) Record {
	return Record{ID: id, Downstream: down}
}

func TestNewStore_Chain(t *testing.T) {
	s, err := NewStore([]Record{rec(1, 2), rec(2, 0)})
	require.NoError(t, err)
	require.Equal(t, []ID{1, 2}, s.IDs())

	d, ok := s.Downstream(1)
	require.True(t, ok)
	require.Equal(t, ID(2), d)

	d, ok = s.Downstream(2)
	require.True(t, ok)
	require.Equal(t, Outlet, d)
}

func TestNewStore_DuplicateSegment(t *testing.T) {
	_, err := NewStore([]Record{rec(1, 0), rec(1, 0)})
	require.Error(t, err)
	require.True(t, errors.Is(err, mcerr.ErrDuplicateSegment))
}

func TestNewStore_DanglingDownstream(t *testing.T) {
	_, err := NewStore([]Record{rec(1, 99)})
	require.Error(t, err)
	require.True(t, errors.Is(err, mcerr.ErrDanglingDownstream))
}

func TestNewStore_Cycle(t *testing.T) {
	_, err := NewStore([]Record{rec(1, 2), rec(2, 3), rec(3, 1)})
	require.Error(t, err)
	require.True(t, errors.Is(err, mcerr.ErrCycle))
}

func TestNewStore_YJunction(t *testing.T) {
	s, err := NewStore([]Record{rec(1, 3), rec(2, 3), rec(3, 0)})
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
}
