package notifier

import (
	"context"
	"fmt"
	"testing"

	"github.com/newthinker/tradewind/internal/core"
)

type fakeNotifier struct {
	name string
	sent []core.Signal
	err  error
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(_ context.Context, signal core.Signal) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, signal)
	return nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	n := &fakeNotifier{name: "fake"}
	r.Register(n)

	got, ok := r.Get("fake")
	if !ok || got != Notifier(n) {
		t.Error("registered notifier not retrievable")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("unknown notifier must not resolve")
	}
}

func TestRegistry_NotifyFansOut(t *testing.T) {
	r := NewRegistry()
	a := &fakeNotifier{name: "a"}
	b := &fakeNotifier{name: "b"}
	failing := &fakeNotifier{name: "c", err: fmt.Errorf("down")}
	r.Register(a)
	r.Register(b)
	r.Register(failing)

	r.Notify(context.Background(), core.Signal{Symbol: "AAPL", Action: core.ActionBuy})

	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Errorf("delivery counts: a=%d b=%d, want 1 each", len(a.sent), len(b.sent))
	}
	// A failing notifier must not block the others
	if len(failing.sent) != 0 {
		t.Error("failing notifier should not record a delivery")
	}
}
