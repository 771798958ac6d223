package redis

import (
	"sync"

	"go.uber.org/zap"
)

// workerPool 固定数量的后台协程，消费闭包任务
type workerPool struct {
	taskChan  chan func()
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// newWorkerPool 启动 workerNum 个 Worker，缓冲区大小 bufferSize
func newWorkerPool(workerNum, bufferSize int) *workerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	p := &workerPool{taskChan: make(chan func(), bufferSize)}
	p.wg.Add(workerNum)
	for i := 0; i < workerNum; i++ {
		go p.startWorker()
	}
	zap.L().Info("Cache Workers started", zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return p
}

// startWorker 启动单个 Worker 消费循环
func (p *workerPool) startWorker() {
	defer p.wg.Done()
	for task := range p.taskChan {
		p.run(task)
	}
}

// run 执行单个任务，panic 不会杀死 Worker
func (p *workerPool) run(task func()) {
	if task == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Cache Worker panic", zap.Any("recover", rec))
		}
	}()
	task()
}

// submit 提交任务
func (p *workerPool) submit(action func()) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		// 关闭后提交的任务直接同步执行
		p.run(action)
		return
	}
	select {
	case p.taskChan <- action:
		// 成功放入
	default:
		// 降级：同步执行
		zap.L().Warn("Cache task channel full, executing synchronously")
		p.run(action)
	}
}

// close 关闭任务通道并等待已提交的任务执行完
func (p *workerPool) close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.taskChan)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
