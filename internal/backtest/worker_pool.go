package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/quantlab/equity-backtest/internal/logger"
	"github.com/quantlab/equity-backtest/internal/monitoring"
	"github.com/quantlab/equity-backtest/internal/sentiment"
	"github.com/quantlab/equity-backtest/internal/strategy"
	"github.com/quantlab/equity-backtest/pkg/config"
	"github.com/quantlab/equity-backtest/pkg/types"
)

// WorkerPool executes independent backtest runs in parallel. Runs share no
// mutable state; bar slices may be shared read-only across jobs because
// bars are immutable. Cancellation is job-granular.
type WorkerPool struct {
	workerCount int
	jobQueue    chan Job
	resultQueue chan JobResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// Job is one backtest run: a risk configuration plus aligned bars and
// signals for every symbol in the run. Sentiment and Log are optional.
type Job struct {
	ID                 string
	RiskCfg            config.RiskConfig
	Bars               map[string][]types.Bar
	Signals            map[string][]strategy.Signal
	Sentiment          sentiment.Provider
	SentimentThreshold float64
	Log                *logger.Logger
}

// JobResult is the outcome of one job. Err is set when the run aborted.
type JobResult struct {
	ID       string
	Result   *BacktestResult
	Duration time.Duration
	Err      error
}

// NewWorkerPool creates a pool with the given number of workers, defaulting
// to the number of CPUs.
func NewWorkerPool(workerCount, jobBufferSize int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan Job, jobBufferSize),
		resultQueue: make(chan JobResult, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop drains the queue, waits for in-flight jobs and shuts the pool down.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit queues a job for execution.
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Results returns the channel of completed jobs.
func (wp *WorkerPool) Results() <-chan JobResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			result := wp.process(job)
			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}
		case <-wp.ctx.Done():
			return
		}
	}
}

// process runs one job with its own engine and risk manager instance. A
// failed run aborts cleanly without affecting sibling jobs.
func (wp *WorkerPool) process(job Job) JobResult {
	start := time.Now()

	engine := NewBacktestEngine(job.RiskCfg).WithLogger(job.Log)
	if job.Sentiment != nil {
		engine.WithSentiment(job.Sentiment, job.SentimentThreshold)
	}
	result, err := engine.Run(job.Bars, job.Signals)
	if err != nil {
		job.Log.Error("run %s aborted: %v", job.ID, err)
	} else {
		monitoring.RecordFinalEquity(job.ID, result.EndBalance)
	}

	return JobResult{
		ID:       job.ID,
		Result:   result,
		Duration: time.Since(start),
		Err:      err,
	}
}
