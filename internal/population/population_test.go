package population

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/random"
)

func TestGenerate(t *testing.T) {
	users, err := Generate(1000, geo.Catalog(), random.New(42))
	require.NoError(t, err)
	require.Len(t, users, 1000)

	ids := make(map[string]bool, len(users))
	homeSizes := map[int]int{}

	for i, u := range users {
		assert.Equal(t, "user"+strconv.Itoa(i), u.Handle)
		assert.Equal(t, u.Handle+"@example.com", u.Email)

		_, err := uuid.Parse(u.ID)
		require.NoError(t, err)
		require.False(t, ids[u.ID], "duplicate user id %s", u.ID)
		ids[u.ID] = true

		require.GreaterOrEqual(t, len(u.Homes), 1)
		require.LessOrEqual(t, len(u.Homes), MaxHomes)
		homeSizes[len(u.Homes)]++

		seen := map[string]bool{}
		for _, h := range u.Homes {
			require.False(t, seen[h.Name], "home %s sampled twice for %s", h.Name, u.Handle)
			seen[h.Name] = true
			assert.True(t, u.IsHome(h))
		}
	}

	for k := 1; k <= MaxHomes; k++ {
		assert.InDelta(t, 1000.0/3, float64(homeSizes[k]), 60, "home set size %d", k)
	}
}

func TestGenerate_HomesReferenceCatalog(t *testing.T) {
	users, err := Generate(20, geo.Catalog(), random.New(1))
	require.NoError(t, err)

	for _, u := range users {
		for _, h := range u.Homes {
			l, ok := geo.Lookup(h.Name)
			require.True(t, ok)
			assert.Same(t, l, h, "homes must point at catalog entries, not copies")
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(50, geo.Catalog(), random.New(42))
	require.NoError(t, err)
	b, err := Generate(50, geo.Catalog(), random.New(42))
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].HomeNames(), b[i].HomeNames())
	}
}

func TestGenerate_SmallCatalog(t *testing.T) {
	catalog := geo.Catalog()[:2]
	users, err := Generate(100, catalog, random.New(9))
	require.NoError(t, err)
	for _, u := range users {
		assert.LessOrEqual(t, len(u.Homes), 2)
	}
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(0, geo.Catalog(), random.New(1))
	assert.Error(t, err)

	_, err = Generate(10, nil, random.New(1))
	assert.Error(t, err)
}
