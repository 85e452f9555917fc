package logconsole

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krun-tools/stepcraft/pkg/idwrap"
)

func TestSendMsgRoutesToRunChannel(t *testing.T) {
	lcm := NewLogChanMap()
	runID := idwrap.NewNow()
	ch := lcm.AddLogChannel(runID)
	defer lcm.DeleteLogChannel(runID)

	err := lcm.StepResult(context.Background(), runID, "登录", LogLevelUnspecified, "通过", map[string]int{"code": 200})
	require.NoError(t, err)

	select {
	case msg := <-ch:
		assert.Equal(t, "登录", msg.StepName)
		assert.Equal(t, "通过", msg.Value)
		assert.JSONEq(t, `{"code":200}`, msg.JSON)
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestSendMsgUnknownRun(t *testing.T) {
	lcm := NewLogChanMap()
	err := lcm.SendMsg(context.Background(), idwrap.NewNow(), LogMessage{Value: "x"})
	assert.Error(t, err)
}

func TestSendMsgHonorsContextWhenFull(t *testing.T) {
	lcm := NewLogChanMap()
	runID := idwrap.NewNow()
	lcm.AddLogChannel(runID)
	defer lcm.DeleteLogChannel(runID)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < bufferSize; i++ {
		require.NoError(t, lcm.SendMsg(ctx, runID, LogMessage{Value: "fill"}))
	}
	cancel()
	err := lcm.SendMsg(ctx, runID, LogMessage{Value: "overflow"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeleteLogChannel(t *testing.T) {
	lcm := NewLogChanMap()
	runID := idwrap.NewNow()
	lcm.AddLogChannel(runID)
	lcm.DeleteLogChannel(runID)

	err := lcm.SendMsg(context.Background(), runID, LogMessage{Value: "late"})
	assert.Error(t, err)
}
