package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/atelierhq/atelierflow/backend/internal/config"
	"github.com/atelierhq/atelierflow/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeGeneration = "generation:message"
)

// GenerationTask carries one placeholder message awaiting provider output.
type GenerationTask struct {
	MessageID   uint    `json:"message_id"`
	ThreadID    uint    `json:"thread_id"`
	AgentID     uint    `json:"agent_id"`
	Prompt      string  `json:"prompt"`
	ModelID     string  `json:"model_id,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// TaskQueue defines the interface for generation task processing.
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *GenerationTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config.
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance.
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue.
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds a generation task to the async queue. Generation tasks are
// never retried by the queue: provider failure is reported upward and the
// fallback decision belongs to the caller.
func (q *AsyncQueue) Enqueue(task *GenerationTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeGeneration, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Task enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

// IsAsync returns true for async queue.
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client.
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process handling (no Redis).
type SyncQueue struct {
	processor func(context.Context, *GenerationTask) error
}

// NewSyncQueue creates a new in-process queue.
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function to process tasks.
func (q *SyncQueue) SetProcessor(processor func(context.Context, *GenerationTask) error) {
	q.processor = processor
}

// Enqueue hands the task to the processor in a new goroutine so the
// placeholder response returns immediately.
func (q *SyncQueue) Enqueue(task *GenerationTask) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] no processor set, task dropped (message_id=%d)", task.MessageID)
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Warnf("[SyncQueue] task processing failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue.
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue.
func (q *SyncQueue) Close() error {
	return nil
}
