package interceptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"pira-rental-backend/internal/logger"
)

func TestLoggingInterceptor(t *testing.T) {
	unary := NewLoggingInterceptor().Unary()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	t.Run("PropagatesRequestID", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestIDKey, "req-42"))
		var seen string
		resp, err := unary(ctx, "in", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			seen = logger.RequestID(ctx)
			return "out", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "out", resp)
		assert.Equal(t, "req-42", seen)
	})

	t.Run("AssignsRequestID", func(t *testing.T) {
		var seen string
		_, _ = unary(context.Background(), "in", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			seen = logger.RequestID(ctx)
			return nil, nil
		})
		assert.Len(t, seen, 36)
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		resp, err := unary(context.Background(), "in", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			panic("boom")
		})
		assert.Nil(t, resp)
		assert.Equal(t, codes.Internal, status.Code(err))
	})
}
