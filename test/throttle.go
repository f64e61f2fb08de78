// throttle.go
//
// A manual throttle experiment: hammer a mock service with a tight window and
// watch the limiter defer calls while the executor absorbs injected 429s.
// Run with: go run test/throttle.go
package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	agentbridge "github.com/intelmesh/agent-bridge"
	"github.com/intelmesh/agent-bridge/mock"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	bridge := agentbridge.New()
	bridge.SetLogger(logger)

	adapter := &mock.MockAdapter{
		ServiceName:    "mockapi",
		RateLimitUntil: 3, // first three calls answer 429
		RetryAfter:     "1",
	}
	err = bridge.RegisterService("mockapi", adapter, &agentbridge.ServiceConfig{
		MaxCalls:      5,
		TimeWindow:    2 * time.Second,
		MaxRetries:    4,
		BaseDelay:     200 * time.Millisecond,
		BackoffFactor: 2.0,
	})
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := bridge.Request(context.Background(), "mockapi", &agentbridge.NormalizedRequest{
				Method:   "GET",
				Endpoint: fmt.Sprintf("/items/%d", n),
			})
			if err != nil {
				fmt.Printf("[%6.2fs] request %2d failed: %v\n", time.Since(start).Seconds(), n, err)
				return
			}
			fmt.Printf("[%6.2fs] request %2d ok\n", time.Since(start).Seconds(), n)
		}(i)
	}
	wg.Wait()

	remaining, _ := bridge.Remaining("mockapi")
	fmt.Printf("\ntotal adapter calls: %d, remaining window capacity: %d\n", adapter.Calls(), remaining)
}
