// Package logconsole fans execution output out to per-run channels so a
// console view can stream step results while a case runs.
package logconsole

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
)

// LogLevel represents the severity level of a log message
type LogLevel int32

const (
	LogLevelUnspecified LogLevel = 0
	LogLevelWarning     LogLevel = 1
	LogLevelError       LogLevel = 2
)

type LogMessage struct {
	LogID idwrap.IDWrap
	// StepName names the step the message belongs to, empty for run-level
	// messages.
	StepName string
	Value    string
	Level    LogLevel
	// JSON carries the structured payload (response body, assert results)
	// encoded as JSON.
	JSON string
}

// LogChanMap routes messages to the channel of the run that produced them.
type LogChanMap struct {
	mt      *sync.Mutex
	chanMap map[idwrap.IDWrap]chan LogMessage
}

func NewLogChanMap() LogChanMap {
	return LogChanMap{
		chanMap: make(map[idwrap.IDWrap]chan LogMessage, 10),
		mt:      &sync.Mutex{},
	}
}

const bufferSize = 10

// AddLogChannel registers a channel for a run and returns it. The caller
// owns draining it and must call DeleteLogChannel when the run ends.
func (l *LogChanMap) AddLogChannel(runID idwrap.IDWrap) chan LogMessage {
	lm := make(chan LogMessage, bufferSize)
	l.mt.Lock()
	defer l.mt.Unlock()
	l.chanMap[runID] = lm
	return lm
}

func (l *LogChanMap) DeleteLogChannel(runID idwrap.IDWrap) {
	l.mt.Lock()
	defer l.mt.Unlock()
	delete(l.chanMap, runID)
}

// SendMsg delivers a message to the run's channel. It fails when the run has
// no registered channel or the context is done before the buffered channel
// accepts the message.
func (l *LogChanMap) SendMsg(ctx context.Context, runID idwrap.IDWrap, msg LogMessage) error {
	l.mt.Lock()
	ch, ok := l.chanMap[runID]
	l.mt.Unlock()
	if !ok {
		return fmt.Errorf("run %s: log channel not found", runID.String())
	}
	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StepResult reports one executed step for the console.
func (l *LogChanMap) StepResult(ctx context.Context, runID idwrap.IDWrap, stepName string, level LogLevel, value string, payload any) error {
	msg := LogMessage{
		LogID:    idwrap.NewNow(),
		StepName: stepName,
		Value:    value,
		Level:    level,
	}
	if payload != nil {
		by, err := json.Marshal(payload)
		if err == nil {
			msg.JSON = string(by)
		}
	}
	return l.SendMsg(ctx, runID, msg)
}
