package alpaca

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
)

// ErrNoOperation is reported for a BatchOperation without a Run function.
var ErrNoOperation = errors.New("batch operation has no run function")

// BatchOperation is a single call in a batch. Run receives a context bounded
// by the executor's timeout.
type BatchOperation[T any] struct {
	ID       string
	Run      func(ctx context.Context) (T, error)
	Callback func(result *BatchResult[T])
}

// BatchResult holds the outcome of one BatchOperation.
type BatchResult[T any] struct {
	ID       string
	Data     T
	Err      error
	Duration time.Duration
}

// Success reports whether the operation completed without error.
func (r BatchResult[T]) Success() bool {
	return r.Err == nil
}

// BatchExecutor runs operations concurrently with bounded parallelism.
type BatchExecutor[T any] struct {
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates an executor running at most concurrency
// operations at once. Non-positive values select the default.
func NewBatchExecutor[T any](concurrency int) *BatchExecutor[T] {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	return &BatchExecutor[T]{
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the per-operation timeout.
func (b *BatchExecutor[T]) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs operations and returns their results in input order.
// Operation errors are reported on the individual results; the returned
// error is non-nil only when ctx ended during the batch.
func (b *BatchExecutor[T]) Execute(ctx context.Context, operations []BatchOperation[T]) ([]BatchResult[T], error) {
	results := make([]BatchResult[T], len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation[T]) {
			defer waitGroup.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[index] = BatchResult[T]{ID: operation.ID, Err: ctx.Err()}

				return
			}

			defer func() { <-semaphore }()

			results[index] = b.run(ctx, operation)

			if operation.Callback != nil {
				operation.Callback(&results[index])
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, ctx.Err()
}

func (b *BatchExecutor[T]) run(ctx context.Context, operation BatchOperation[T]) BatchResult[T] {
	result := BatchResult[T]{ID: operation.ID}

	if operation.Run == nil {
		result.Err = ErrNoOperation

		return result
	}

	opCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	result.Data, result.Err = operation.Run(opCtx)
	result.Duration = time.Since(start)

	return result
}

// BatchErrors joins the errors of failed results, or returns nil.
func BatchErrors[T any](results []BatchResult[T]) error {
	var errs []error

	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}

	return errors.Join(errs...)
}
