package dispatch

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

// rank filters candidates to those eligible for the order and returns the
// best one. Ranking is straight-line distance to the delivery point, ties
// broken by fewest active orders, then earliest hire date, then id, so a
// given fleet state always produces the same assignment.
func rank(candidates []domain.Driver, excluded []uuid.UUID, dest domain.Point, maxActive int, radiusKm float64) (domain.Driver, bool) {
	skip := make(map[uuid.UUID]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}

	type ranked struct {
		driver domain.Driver
		dist   float64
	}
	eligible := make([]ranked, 0, len(candidates))
	for _, d := range candidates {
		if _, ok := skip[d.ID]; ok {
			continue
		}
		if !d.Dispatchable(maxActive) {
			continue
		}
		dist := d.Location.DistanceKm(dest)
		if dist > radiusKm {
			continue
		}
		eligible = append(eligible, ranked{driver: d, dist: dist})
	}
	if len(eligible) == 0 {
		return domain.Driver{}, false
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.driver.ActiveOrders != b.driver.ActiveOrders {
			return a.driver.ActiveOrders < b.driver.ActiveOrders
		}
		if !a.driver.HiredAt.Equal(b.driver.HiredAt) {
			return a.driver.HiredAt.Before(b.driver.HiredAt)
		}
		return a.driver.ID.String() < b.driver.ID.String()
	})
	return eligible[0].driver, true
}
