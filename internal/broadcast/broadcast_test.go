package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeGateway struct {
	sends   []int64
	failFor map[int64]error
}

func (g *fakeGateway) SendText(_ context.Context, chat int64, _ string, _ bool) error {
	g.sends = append(g.sends, chat)
	if err, ok := g.failFor[chat]; ok {
		return err
	}
	return nil
}

func TestRunCountsSentAndFailed(t *testing.T) {
	gw := &fakeGateway{failFor: map[int64]error{
		3: errors.New("forbidden: bot was blocked by the user"),
		7: errors.New("forbidden: bot was blocked by the user"),
		9: errors.New("forbidden: bot was blocked by the user"),
	}}
	recipients := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	e := New(gw, 0)
	res := e.Run(context.Background(), "hello all", recipients)

	if res.Sent != 7 || res.Failed != 3 {
		t.Fatalf("sent=%d failed=%d", res.Sent, res.Failed)
	}
	if res.Total != 10 || len(gw.sends) != 10 {
		t.Fatalf("attempted %d sends, want 10", len(gw.sends))
	}
	for i, chat := range gw.sends {
		if chat != recipients[i] {
			t.Fatalf("send %d went to %d, want %d", i, chat, recipients[i])
		}
	}
}

func TestRunFailureDoesNotAbort(t *testing.T) {
	gw := &fakeGateway{failFor: map[int64]error{1: errors.New("boom")}}
	e := New(gw, 0)
	res := e.Run(context.Background(), "msg", []int64{1, 2, 3})
	if res.Sent != 2 || res.Failed != 1 {
		t.Fatalf("sent=%d failed=%d", res.Sent, res.Failed)
	}
	if len(gw.sends) != 3 {
		t.Fatalf("sends = %d", len(gw.sends))
	}
}

func TestRunPausesBetweenSends(t *testing.T) {
	gw := &fakeGateway{}
	e := New(gw, 50*time.Millisecond)

	var pauses []time.Duration
	e.sleep = func(d time.Duration) { pauses = append(pauses, d) }

	e.Run(context.Background(), "msg", []int64{1, 2, 3, 4})

	if len(pauses) != 3 {
		t.Fatalf("pauses = %d, want one between each pair of sends", len(pauses))
	}
	for _, d := range pauses {
		if d != 50*time.Millisecond {
			t.Fatalf("pause = %v", d)
		}
	}
}

func TestRunEmptyRegistry(t *testing.T) {
	gw := &fakeGateway{}
	res := New(gw, time.Millisecond).Run(context.Background(), "msg", nil)
	if res.Sent != 0 || res.Failed != 0 || res.Total != 0 {
		t.Fatalf("res = %+v", res)
	}
	if len(gw.sends) != 0 {
		t.Fatal("no sends expected")
	}
}
