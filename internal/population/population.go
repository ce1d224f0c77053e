// Package population builds the synthetic user accounts that sign in.
package population

import (
	"fmt"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/random"
)

// Domain is the mail domain every synthetic account belongs to.
const Domain = "example.com"

// MaxHomes caps how many home locations one user gets.
const MaxHomes = 3

// User is one synthetic identity. Homes are the locations the user usually
// signs in from, in the order they were drawn.
type User struct {
	ID     string
	Email  string
	Handle string
	Homes  []*geo.Location
}

// Generate creates n users with 1..MaxHomes distinct home locations each.
func Generate(n int, catalog []*geo.Location, src *random.Source) ([]User, error) {
	if n <= 0 {
		return nil, fmt.Errorf("population size must be positive, got %d", n)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("empty location catalog")
	}

	users := make([]User, n)
	for i := range users {
		handle := fmt.Sprintf("user%d", i)
		users[i] = User{
			Handle: handle,
			Email:  handle + "@" + Domain,
			ID:     src.UUID(),
		}
		k := src.IntRange(1, MaxHomes)
		users[i].Homes = sample(catalog, k, src)
	}
	return users, nil
}

// sample draws k locations without replacement (partial Fisher-Yates).
func sample(catalog []*geo.Location, k int, src *random.Source) []*geo.Location {
	if k > len(catalog) {
		k = len(catalog)
	}
	pool := append([]*geo.Location(nil), catalog...)
	for i := 0; i < k; i++ {
		j := i + src.Pick(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k:k]
}

// HomeNames returns the names of the user's home locations.
func (u User) HomeNames() []string {
	names := make([]string, len(u.Homes))
	for i, h := range u.Homes {
		names[i] = h.Name
	}
	return names
}

// IsHome reports whether l is one of the user's home locations.
func (u User) IsHome(l *geo.Location) bool {
	for _, h := range u.Homes {
		if h == l {
			return true
		}
	}
	return false
}
