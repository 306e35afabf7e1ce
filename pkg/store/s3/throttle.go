package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/middleware"

	"github.com/marmos91/tulipfs/internal/ratelimiter"
)

// throttleID names the rate limiting step in the client middleware stack.
const throttleID = "TulipRateLimit"

// WithRateLimit returns an s3.Options function that makes every API call
// wait for a token from l before it is signed and sent. Retries of the same
// call do not consume extra tokens. A nil l leaves the client unthrottled.
//
// Example:
//
//	client := s3.NewFromConfig(cfg, WithRateLimit(ratelimiter.New(100, 200)))
func WithRateLimit(l *ratelimiter.RateLimiter) func(*s3.Options) {
	return func(o *s3.Options) {
		if l == nil {
			return
		}
		o.APIOptions = append(o.APIOptions, func(stack *middleware.Stack) error {
			return stack.Initialize.Add(throttleMiddleware(l), middleware.Before)
		})
	}
}

func throttleMiddleware(l *ratelimiter.RateLimiter) middleware.InitializeMiddleware {
	return middleware.InitializeMiddlewareFunc(throttleID, func(
		ctx context.Context, in middleware.InitializeInput, next middleware.InitializeHandler,
	) (middleware.InitializeOutput, middleware.Metadata, error) {
		if err := l.Wait(ctx); err != nil {
			return middleware.InitializeOutput{}, middleware.Metadata{}, err
		}
		return next.HandleInitialize(ctx, in)
	})
}
