// Package stats computes the aggregate figures shown on the statistics page.
// Every call scans the store; nothing is cached.
package stats

import (
	"context"

	"accreditations/internal/models"

	"golang.org/x/sync/errgroup"
)

// Source is the read side of the record store the aggregations need.
type Source interface {
	Count(ctx context.Context) (int64, error)
	CountByCity(ctx context.Context) ([]models.CityCount, error)
	Ages(ctx context.Context) ([]int, error)
}

type Summary struct {
	Total      int64
	ByCity     []models.CityCount
	AgeDecades map[int]int
}

type Service struct {
	Source Source
}

func NewService(src Source) *Service {
	return &Service{Source: src}
}

func (s *Service) TotalCount(ctx context.Context) (int64, error) {
	return s.Source.Count(ctx)
}

func (s *Service) CountByCity(ctx context.Context) ([]models.CityCount, error) {
	return s.Source.CountByCity(ctx)
}

// AgeDecadeHistogram buckets ages by floor(age/10)*10. Only observed buckets
// are present in the result.
func (s *Service) AgeDecadeHistogram(ctx context.Context) (map[int]int, error) {
	ages, err := s.Source.Ages(ctx)
	if err != nil {
		return nil, err
	}
	return DecadeHistogram(ages), nil
}

// Summary runs the three aggregations concurrently.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.TotalCount(gctx)
		out.Total = n
		return err
	})
	g.Go(func() error {
		c, err := s.CountByCity(gctx)
		out.ByCity = c
		return err
	})
	g.Go(func() error {
		h, err := s.AgeDecadeHistogram(gctx)
		out.AgeDecades = h
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// DecadeHistogram buckets ages by floor(age/10)*10, so -5 lands in -10.
func DecadeHistogram(ages []int) map[int]int {
	out := make(map[int]int)
	for _, age := range ages {
		b := age / 10
		if age < 0 && age%10 != 0 {
			b--
		}
		out[b*10]++
	}
	return out
}
