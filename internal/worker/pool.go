package worker

import (
	"context"
	"sync"
)

// Task produces the result for item i
type Task[T any] func(ctx context.Context, i int) (T, error)

// Run executes task for every index in [0, n) on at most workers goroutines
// and returns the results in index order. With workers <= 1 the tasks run
// sequentially on the calling goroutine.
//
// When tasks fail, the error of the lowest failing index is returned and the
// context handed to still-running tasks is cancelled. Errors those tasks
// return after that cancellation are not counted as failures.
func Run[T any](ctx context.Context, workers, n int, task Task[T]) ([]T, error) {
	results := make([]T, n)
	if n == 0 {
		return results, nil
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			res, err := task(ctx, i)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}
	if workers > n {
		workers = n
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, n)
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := task(ctx, i)
				if err != nil {
					// Cut short by another task's failure, not failed itself.
					if ctx.Err() != nil && parent.Err() == nil {
						continue
					}
					errs[i] = err
					cancel()
					continue
				}
				results[i] = res
			}
		}()
	}

submit:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break submit
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
