package middleware

import (
	"context"
	"time"

	"gomarketplace_ingest/pkg/logger"
)

type RequestFunc func(ctx context.Context, method, endpoint string, requestBody, response interface{}) error

type Middleware func(next RequestFunc) RequestFunc

// Chain применяет middlewares так, что первый в списке выполняется первым.
func Chain(fn RequestFunc, middlewares ...Middleware) RequestFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		fn = middlewares[i](fn)
	}
	return fn
}

func Logging(log logger.Logger) Middleware {
	return func(next RequestFunc) RequestFunc {
		return func(ctx context.Context, method, endpoint string, requestBody, response interface{}) error {
			start := time.Now()
			err := next(ctx, method, endpoint, requestBody, response)
			if err != nil {
				log.Warn("%s %s failed after %v: %v", method, endpoint, time.Since(start), err)
				return err
			}
			log.Debug("%s %s done in %v", method, endpoint, time.Since(start))
			return nil
		}
	}
}
