package records

import (
	"context"

	"github.com/contiamo/typednull/pkg/db/serialization/null"
)

// StoreMock keeps the records in memory and counts the updates
type StoreMock struct {
	Records     map[int64]Record
	UpdateErr   error
	UpdateCalls int
}

func (s *StoreMock) Create(ctx context.Context, body string, count null.Int64) (int64, error) {
	if s.Records == nil {
		s.Records = map[int64]Record{}
	}
	id := int64(len(s.Records) + 1)
	s.Records[id] = Record{ID: id, Body: body, Count: count}
	return id, nil
}

func (s *StoreMock) Get(ctx context.Context, id int64) (Record, error) {
	r, ok := s.Records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (s *StoreMock) UpdateCount(ctx context.Context, id int64, count null.Int64) (int64, error) {
	return s.UpdateCountWith(ctx, StrategyTyped, id, count)
}

func (s *StoreMock) UpdateCountWith(ctx context.Context, strategy Strategy, id int64, count null.Int64) (int64, error) {
	s.UpdateCalls++
	if s.UpdateErr != nil {
		return 0, s.UpdateErr
	}
	r, ok := s.Records[id]
	if !ok {
		return 0, nil
	}
	r.Count = count
	s.Records[id] = r
	return 1, nil
}
