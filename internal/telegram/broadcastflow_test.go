package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"

	"universebot/internal/broadcast"
	"universebot/internal/session"
)

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeNotifier) SendText(_ context.Context, _ int64, text string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

type fakeRunner struct {
	message    string
	recipients []int64
	result     broadcast.Result
	calls      int
}

func (f *fakeRunner) Run(_ context.Context, message string, recipients []int64) broadcast.Result {
	f.calls++
	f.message = message
	f.recipients = recipients
	return f.result
}

func TestExecuteRejectsNonAdmin(t *testing.T) {
	users := session.NewRegistry()
	users.Touch(101, "alice")

	runner := &fakeRunner{}
	gw := &fakeNotifier{}
	flow := NewBroadcastFlow(runner, users, gw, 500)

	if err := flow.Execute(context.Background(), 101, 101, "hi all"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if runner.calls != 0 {
		t.Fatalf("engine ran %d times for non-admin, want 0", runner.calls)
	}
	if len(gw.texts) != 1 || gw.texts[0] != "❌ Admin access required!" {
		t.Fatalf("unexpected replies: %q", gw.texts)
	}
}

func TestExecuteRejectsWhenNoAdminConfigured(t *testing.T) {
	flow := NewBroadcastFlow(&fakeRunner{}, session.NewRegistry(), &fakeNotifier{}, 0)

	gw := &fakeNotifier{}
	flow.gw = gw
	if err := flow.Execute(context.Background(), 1, 1, "hi"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(gw.texts) != 1 || gw.texts[0] != "❌ Admin access required!" {
		t.Fatalf("unexpected replies: %q", gw.texts)
	}
}

func TestExecuteUsageOnEmptyMessage(t *testing.T) {
	runner := &fakeRunner{}
	gw := &fakeNotifier{}
	flow := NewBroadcastFlow(runner, session.NewRegistry(), gw, 500)

	if err := flow.Execute(context.Background(), 500, 500, "   "); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if runner.calls != 0 {
		t.Fatalf("engine ran on empty message")
	}
	if len(gw.texts) != 1 || gw.texts[0] != "📢 Usage: /broadcast <message>" {
		t.Fatalf("unexpected replies: %q", gw.texts)
	}
}

func TestExecuteRunsAndSummarizes(t *testing.T) {
	users := session.NewRegistry()
	users.Touch(1, "a")
	users.Touch(2, "b")
	users.Touch(3, "c")

	runner := &fakeRunner{result: broadcast.Result{Total: 3, Sent: 2, Failed: 1}}
	gw := &fakeNotifier{}
	flow := NewBroadcastFlow(runner, users, gw, 500)

	if err := flow.Execute(context.Background(), 500, 500, "server maintenance tonight"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if runner.calls != 1 {
		t.Fatalf("engine ran %d times, want 1", runner.calls)
	}
	if runner.message != "server maintenance tonight" {
		t.Fatalf("engine got message %q", runner.message)
	}
	if len(runner.recipients) != 3 {
		t.Fatalf("engine got %d recipients, want 3", len(runner.recipients))
	}

	if len(gw.texts) != 2 {
		t.Fatalf("got %d replies, want pre-flight and summary: %q", len(gw.texts), gw.texts)
	}
	if gw.texts[0] != "📢 Broadcasting to 3 users..." {
		t.Fatalf("pre-flight = %q", gw.texts[0])
	}
	if !strings.Contains(gw.texts[1], "✅ Broadcast complete!") ||
		!strings.Contains(gw.texts[1], "Sent: 2") ||
		!strings.Contains(gw.texts[1], "Failed: 1") {
		t.Fatalf("summary = %q", gw.texts[1])
	}
}
