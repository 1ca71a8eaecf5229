//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

// RetryPolicy bounds retries of transient model-call failures. Attempts are
// counted inclusive of the first try: MaxAttempts=3 means one initial try
// plus up to two retries.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries per model call.
	MaxAttempts int

	// InitialInterval is the backoff before the first retry.
	InitialInterval time.Duration

	// BackoffFactor multiplies the interval after each retry.
	BackoffFactor float64
}

// DefaultRetryPolicy returns the policy applied when none is configured:
// three attempts with a 600ms initial backoff doubling per retry.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 600 * time.Millisecond,
		BackoffFactor:   2,
	}
}

// nextDelay returns the backoff before retry n, zero-based.
func (p RetryPolicy) nextDelay(retry int) time.Duration {
	if p.InitialInterval <= 0 {
		return 0
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 1
	}
	return time.Duration(float64(p.InitialInterval) * math.Pow(factor, float64(retry)))
}

// retryable reports whether a failed model call is worth another attempt.
// API-level failures are classified by the response error; function-level
// errors retry only on timeouts.
func retryable(rsp *model.Response, err error) bool {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		var netErr net.Error
		return errors.As(err, &netErr) && netErr.Timeout()
	}
	return rsp != nil && rsp.Error.Transient()
}

// generateWithRetry issues one model call, retrying transient failures per
// the agent's policy. It returns the first successful response; exhaustion
// or a non-transient failure returns the last error.
func (a *Agent) generateWithRetry(ctx context.Context, m model.Model, req *model.Request) (*model.Response, error) {
	maxAttempts := a.retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	attempts := 0
	for attempts < maxAttempts {
		attempts++
		rsp, err := m.GenerateContent(ctx, req)
		switch {
		case err != nil:
			lastErr = err
		case rsp == nil:
			lastErr = errors.New("model returned no response")
		case rsp.Error != nil:
			lastErr = rsp.Error
		default:
			return rsp, nil
		}
		if attempts == maxAttempts || !retryable(rsp, err) {
			break
		}

		delay := a.retry.nextDelay(attempts - 1)
		log.Debugf("agent %s: model call attempt %d/%d failed, retrying in %s: %v",
			a.name, attempts, maxAttempts, delay, lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("model call failed after %d attempt(s): %w", attempts, lastErr)
}
