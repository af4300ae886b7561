package calculator

import (
	"sync"
)

// 基于任务下标分配的 worker 池，每次 dispatch 新起 worker，结束后全部退出
type executor struct {
	workers int
}

type task struct {
	start int
	end   int
}

func newExecutor(workers int) *executor {
	if workers <= 0 {
		workers = 1
	}
	return &executor{workers: workers}
}

// 把 [0, total) 切成若干段分给 worker，全部完成后返回
func (e *executor) dispatch(total int, f func(i int)) {
	if total == 0 {
		return
	}
	workers := e.workers
	if workers > total {
		workers = total
	}
	taskLen, remainder := total/workers, total%workers

	dispatchChan := make(chan task, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range dispatchChan {
				for i := t.start; i < t.end; i++ {
					f(i)
				}
			}
		}()
	}

	start := 0
	for w := 0; w < workers; w++ {
		end := start + taskLen
		if w < remainder {
			end++
		}
		dispatchChan <- task{start: start, end: end}
		start = end
	}
	close(dispatchChan)
	wg.Wait()
}
