// request_context.go - Request tracking and logging system

package common

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// RequestContext tracks one recognition request through the pipeline:
// resolve, provider call, verification. Every log line carries the request
// id so interleaved commands stay readable.
type RequestContext struct {
	RequestID        string
	Mode             string
	StartTime        time.Time
	Steps            []StepLog
	CurrentStep      string
	CurrentStepStart time.Time
}

// StepLog represents a single pipeline step.
type StepLog struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Duration  int64     `json:"duration_ms"`
	Status    string    `json:"status"` // "success", "failed", "skipped"
	Error     string    `json:"error,omitempty"`
}

// NewRequestContext creates a new request tracking context.
func NewRequestContext(mode string) *RequestContext {
	reqID := uuid.New().String()
	now := time.Now()

	log.Printf("[%s] 开始识别请求 | mode: %s", reqID, mode)

	return &RequestContext{
		RequestID: reqID,
		Mode:      mode,
		StartTime: now,
		Steps:     []StepLog{},
	}
}

// StartStep begins tracking a new pipeline step.
func (rc *RequestContext) StartStep(stepName string) {
	rc.CurrentStep = stepName
	rc.CurrentStepStart = time.Now()
	log.Printf("[%s] ┌── %s", rc.RequestID, stepName)
}

// EndStep completes the current step and records timing.
func (rc *RequestContext) EndStep(status string, err error) {
	duration := time.Since(rc.CurrentStepStart).Milliseconds()

	stepLog := StepLog{
		Name:      rc.CurrentStep,
		StartTime: rc.CurrentStepStart,
		Duration:  duration,
		Status:    status,
	}
	if err != nil {
		stepLog.Error = err.Error()
		log.Printf("[%s] └── ❌ %s (%.2fs): %v",
			rc.RequestID, rc.CurrentStep, float64(duration)/1000, err)
	} else {
		log.Printf("[%s] └── ✅ %s (%.2fs)",
			rc.RequestID, rc.CurrentStep, float64(duration)/1000)
	}
	rc.Steps = append(rc.Steps, stepLog)
	rc.CurrentStep = ""
}

// LogInfo writes a request-scoped log line.
func (rc *RequestContext) LogInfo(format string, args ...interface{}) {
	log.Printf("["+rc.RequestID+"] "+format, args...)
}

// Finish logs the total request duration.
func (rc *RequestContext) Finish() {
	log.Printf("[%s] 请求完成，共 %d 步，耗时 %.2fs",
		rc.RequestID, len(rc.Steps), time.Since(rc.StartTime).Seconds())
}
