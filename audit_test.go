package webauth

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("disabled audit config must not start a dispatcher")
	}

	// Nil receivers are safe end to end.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 64}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: EventLoginSuccess})
	}
	d.Close()

	if got := sink.count.Load(); got != 10 {
		t.Fatalf("delivered %d events, want 10", got)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// The worker blocks on the gate; flood past the buffer.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: EventLoginSuccess})
	}

	deadline := time.After(2 * time.Second)
	for d.Dropped() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected dropped events with a full buffer")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	close(sink.gate)
	d.Close()
}

func TestDispatcherEmitAfterClose(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4}, sink)
	d.Close()

	d.Emit(context.Background(), AuditEvent{EventType: EventLogout})
	if got := sink.count.Load(); got != 0 {
		t.Fatalf("emit after close delivered %d events", got)
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		EventType: EventRegistered,
		Username:  "alice",
		Success:   true,
	})

	line := strings.TrimSpace(buf.String())
	var decoded AuditEvent
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("sink output is not JSON: %v", err)
	}
	if decoded.EventType != EventRegistered || decoded.Username != "alice" || !decoded.Success {
		t.Fatalf("unexpected event: %+v", decoded)
	}
}

func TestChannelSink(t *testing.T) {
	sink := NewChannelSink(2)
	sink.Emit(context.Background(), AuditEvent{EventType: EventLogout, Username: "alice"})

	select {
	case ev := <-sink.Events():
		if ev.Username != "alice" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}
