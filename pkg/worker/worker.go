package worker

import (
	"errors"
	"sync"

	"github.com/finboard/warehouse-etl/pkg/logger"
)

type WorkerHandler = func(workerIndex int, job interface{})

// WorkerManager is a goroutine pool fed through Enqueue. Workers run until
// Exit() is called; the job channel is never closed here because it can be
// shared with other producers.
type WorkerManager struct {
	bufferSize     int
	jobChannel     chan interface{}
	numberOfWorker int
	stop           chan struct{}
	do             WorkerHandler
	waiter         *sync.WaitGroup
}

func NewWorkerManager(bufferSize, numberOfWorkers int, jobChannel chan interface{}) *WorkerManager {
	if jobChannel == nil {
		jobChannel = make(chan interface{}, bufferSize)
	}
	return &WorkerManager{
		bufferSize:     bufferSize,
		numberOfWorker: numberOfWorkers,
		jobChannel:     jobChannel,
		stop:           make(chan struct{}),
		waiter:         &sync.WaitGroup{},
	}
}

func (w *WorkerManager) GetUnreadCount() int64 {
	if w.jobChannel == nil {
		return 0
	}
	return int64(len(w.jobChannel))
}

func (w *WorkerManager) JobEvents() chan interface{} {
	return w.jobChannel
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

// Enqueue publishes a job onto the channel. Blocks when the buffer is full.
func (w *WorkerManager) Enqueue(val interface{}) {
	w.jobChannel <- val
}

// Start runs the workers and blocks until Exit() is called. Pending jobs in
// the buffer are drained before a worker honors the stop request.
func (w *WorkerManager) Start() error {
	if w.do == nil {
		return errors.New("worker handler is not set")
	}
	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.waiter.Done()
			for {
				select {
				case job := <-w.jobChannel:
					w.do(index, job)
				case <-w.stop:
					for {
						select {
						case job := <-w.jobChannel:
							w.do(index, job)
						default:
							return
						}
					}
				}
			}
		}(i)
	}
	w.waiter.Wait()
	return errors.New("workers terminated")
}

// Exit stops all workers after the buffered jobs are drained.
func (w *WorkerManager) Exit() {
	logger.Info("worker manager shutting down")
	close(w.stop)
}
