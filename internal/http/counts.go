package http

import (
	"context"

	"go.uber.org/zap"
)

// countChunks returns the number of stored chunks, or -1 if the store
// cannot be read.
func (s *Server) countChunks(ctx context.Context) int {
	n, err := s.knowledge.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "counting chunks failed", zap.Error(err))
		return -1
	}
	return n
}
