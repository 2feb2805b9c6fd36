package services

import (
	"context"
	"testing"
	"time"
)

func TestTaskTypeGeneration_Constant(t *testing.T) {
	if TaskTypeGeneration != "generation:message" {
		t.Errorf("TaskTypeGeneration = %q, expected %q", TaskTypeGeneration, "generation:message")
	}
}

func TestGenerationTask_Structure(t *testing.T) {
	task := GenerationTask{
		MessageID:   1,
		ThreadID:    10,
		AgentID:     3,
		Prompt:      "Summarize the feedback thread",
		ModelID:     "gpt-4o",
		DisplayName: "Content Assistant",
		Temperature: 0.7,
	}

	if task.MessageID != 1 {
		t.Errorf("MessageID = %d, expected 1", task.MessageID)
	}
	if task.ThreadID != 10 {
		t.Errorf("ThreadID = %d, expected 10", task.ThreadID)
	}
	if task.AgentID != 3 {
		t.Errorf("AgentID = %d, expected 3", task.AgentID)
	}
	if task.Prompt != "Summarize the feedback thread" {
		t.Errorf("Prompt = %q", task.Prompt)
	}
	if task.ModelID != "gpt-4o" {
		t.Errorf("ModelID = %q, expected %q", task.ModelID, "gpt-4o")
	}
	if task.Temperature != 0.7 {
		t.Errorf("Temperature = %v, expected 0.7", task.Temperature)
	}
}

func TestSyncQueue_New(t *testing.T) {
	queue := NewSyncQueue()
	if queue == nil {
		t.Error("NewSyncQueue should not return nil")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Close(); err != nil {
		t.Errorf("SyncQueue.Close() should return nil, got %v", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()
	task := &GenerationTask{MessageID: 1, ThreadID: 1}

	if err := queue.Enqueue(task); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_EnqueueRunsProcessor(t *testing.T) {
	queue := NewSyncQueue()

	processed := make(chan *GenerationTask, 1)
	queue.SetProcessor(func(ctx context.Context, task *GenerationTask) error {
		processed <- task
		return nil
	})

	if err := queue.Enqueue(&GenerationTask{MessageID: 7}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	select {
	case task := <-processed:
		if task.MessageID != 7 {
			t.Errorf("processed MessageID = %d, expected 7", task.MessageID)
		}
	case <-time.After(time.Second):
		t.Fatal("processor was not invoked")
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}
