package service

import (
	"context"
	"fmt"
	"strings"
)

// Stats reports stored collections and their entry counts.
func (s *Service) Stats(ctx context.Context, req StatsRequest) ([]CollectionStats, error) {
	store, err := s.ensureStore()
	if err != nil {
		return nil, err
	}
	infos, err := store.Collections(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Collection)
	if name == "" {
		return infos, nil
	}
	for _, info := range infos {
		if info.Name == name {
			return []CollectionStats{info}, nil
		}
	}
	return nil, fmt.Errorf("collection %s not found", name)
}
