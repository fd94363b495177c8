package stats

import (
	"context"
	"errors"
	"testing"

	"accreditations/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	total  int64
	cities []models.CityCount
	ages   []int
	err    error
}

func (f fakeSource) Count(context.Context) (int64, error) { return f.total, f.err }

func (f fakeSource) CountByCity(context.Context) ([]models.CityCount, error) {
	return f.cities, nil
}

func (f fakeSource) Ages(context.Context) ([]int, error) { return f.ages, nil }

func TestDecadeHistogram(t *testing.T) {
	assert.Equal(t, map[int]int{20: 2, 40: 1}, DecadeHistogram([]int{23, 27, 41}))
	assert.Equal(t, map[int]int{0: 1, 30: 1, 100: 1}, DecadeHistogram([]int{9, 30, 100}))
	assert.Equal(t, map[int]int{-10: 2, -20: 1, 0: 1}, DecadeHistogram([]int{-5, -10, -11, 0}))
	assert.Empty(t, DecadeHistogram(nil))
}

func TestSummary(t *testing.T) {
	src := fakeSource{
		total:  4,
		cities: []models.CityCount{{City: "", Count: 1}, {City: "Caracas", Count: 3}},
		ages:   []int{23, 27, 41},
	}
	svc := NewService(src)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, sum.Total)
	assert.Equal(t, src.cities, sum.ByCity)
	assert.Equal(t, map[int]int{20: 2, 40: 1}, sum.AgeDecades)
}

func TestSummaryPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(fakeSource{err: boom})

	_, err := svc.Summary(context.Background())
	require.ErrorIs(t, err, boom)
}
