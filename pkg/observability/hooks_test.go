package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	runs, passes int
}

func (h *recordingPipelineHooks) OnRunStart(ctx context.Context, runID string, passes int) {
	h.runs++
}

func (h *recordingPipelineHooks) OnPassStart(ctx context.Context, runID string, pass int) {
	h.passes++
}

type recordingCodecHooks struct {
	NoopCodecHooks
	decodes int
}

func (h *recordingCodecHooks) OnDecode(ctx context.Context, memoized bool, err error) {
	h.decodes++
}

func TestHookRegistration(t *testing.T) {
	t.Cleanup(Reset)

	ph := &recordingPipelineHooks{}
	ch := &recordingCodecHooks{}
	SetPipelineHooks(ph)
	SetCodecHooks(ch)

	ctx := context.Background()
	Pipeline().OnRunStart(ctx, "run-1", 2)
	Pipeline().OnPassStart(ctx, "run-1", 0)
	Pipeline().OnPassStart(ctx, "run-1", 1)
	Pipeline().OnRunComplete(ctx, "run-1", time.Second, false)
	Codec().OnDecode(ctx, true, nil)

	if ph.runs != 1 || ph.passes != 2 {
		t.Errorf("pipeline hooks saw runs=%d passes=%d, want 1/2", ph.runs, ph.passes)
	}
	if ch.decodes != 1 {
		t.Errorf("codec hooks saw %d decodes, want 1", ch.decodes)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	ph := &recordingPipelineHooks{}
	SetPipelineHooks(ph)
	SetPipelineHooks(nil)

	Pipeline().OnRunStart(context.Background(), "run-1", 1)
	if ph.runs != 1 {
		t.Error("nil registration replaced the active hooks")
	}
}

func TestReset(t *testing.T) {
	ph := &recordingPipelineHooks{}
	SetPipelineHooks(ph)
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset did not restore no-op pipeline hooks")
	}
	if _, ok := Codec().(NoopCodecHooks); !ok {
		t.Error("Reset did not restore no-op codec hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset did not restore no-op cache hooks")
	}
}
