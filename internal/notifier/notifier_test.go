package notifier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/notify"

	"github.com/rs/zerolog"
)

type fakeChannel struct {
	mu    sync.Mutex
	name  string
	sent  []notify.Notification
	fail  error
	calls int
}

func (f *fakeChannel) Name() string { return f.name }
func (f *fakeChannel) Send(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, n)
	return nil
}

func TestManager_FanOut(t *testing.T) {
	m := NewManager(zerolog.Nop())
	a := &fakeChannel{name: "a"}
	b := &fakeChannel{name: "b"}
	m.AddChannel(a)
	m.AddChannel(b)

	n := notify.Notification{
		UserID:     "u1",
		DocumentID: "d1",
		Event:      notify.EventApproved,
		Title:      "expense report",
	}
	if err := m.Notify(context.Background(), n); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Fatalf("expected both channels to receive, got a=%d b=%d", len(a.sent), len(b.sent))
	}
}

func TestManager_FailedChannelDoesNotStopOthers(t *testing.T) {
	m := NewManager(zerolog.Nop())
	bad := &fakeChannel{name: "bad", fail: errors.New("gateway down")}
	good := &fakeChannel{name: "good"}
	m.AddChannel(bad)
	m.AddChannel(good)

	err := m.Notify(context.Background(), notify.Notification{UserID: "u1", DocumentID: "d1"})
	if err == nil {
		t.Fatalf("expected joined error from failing channel")
	}
	if len(good.sent) != 1 {
		t.Fatalf("good channel should still receive, got %d", len(good.sent))
	}
}

func TestManager_Disabled(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ch := &fakeChannel{name: "a"}
	m.AddChannel(ch)
	m.SetEnabled(false)

	if err := m.Notify(context.Background(), notify.Notification{UserID: "u1"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if ch.calls != 0 {
		t.Fatalf("disabled manager must not send, got %d calls", ch.calls)
	}
}

func TestSMSChannel_Send(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"key":      r.PostFormValue("key"),
			"sender":   r.PostFormValue("sender"),
			"receiver": r.PostFormValue("receiver"),
			"msg":      r.PostFormValue("msg"),
		}
		w.Write([]byte(`{"result_code":"1","message":"success"}`))
	}))
	defer srv.Close()

	lookup := func(_ context.Context, userID string) (string, error) {
		if userID != "u1" {
			t.Errorf("unexpected lookup for %q", userID)
		}
		return "01012345678", nil
	}
	ch := NewSMSChannel(srv.URL, "k", "0220001111", lookup)

	err := ch.Send(context.Background(), notify.Notification{
		UserID:     "u1",
		DocumentID: "d1",
		Event:      notify.EventApprovalRequested,
		Title:      "purchase request",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotForm["receiver"] != "01012345678" || gotForm["key"] != "k" || gotForm["sender"] != "0220001111" {
		t.Fatalf("unexpected form: %+v", gotForm)
	}
	if gotForm["msg"] == "" {
		t.Fatalf("expected non-empty message body")
	}
}

func TestSMSChannel_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result_code":"-101","message":"invalid key"}`))
	}))
	defer srv.Close()

	ch := NewSMSChannel(srv.URL, "k", "s", func(context.Context, string) (string, error) {
		return "01000000000", nil
	})
	err := ch.Send(context.Background(), notify.Notification{UserID: "u1"})
	if err == nil {
		t.Fatalf("expected gateway error")
	}
}

func TestSMSChannel_NoContactSkips(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	ch := NewSMSChannel(srv.URL, "k", "s", func(context.Context, string) (string, error) {
		return "", nil
	})
	if err := ch.Send(context.Background(), notify.Notification{UserID: "u1"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if called {
		t.Fatalf("channel must skip users without a contact")
	}
}

func TestKakaoChannel_TemplateSelection(t *testing.T) {
	var tpl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		tpl = r.PostFormValue("tpl_code")
		w.Write([]byte(`{"code":0,"message":"ok"}`))
	}))
	defer srv.Close()

	ch := NewKakaoChannel(srv.URL, "k", "sk", func(context.Context, string) (string, error) {
		return "01012345678", nil
	})

	cases := []struct {
		event notify.EventKind
		want  string
	}{
		{notify.EventApprovalRequested, "APV_REQ_01"},
		{notify.EventEscalated, "APV_ESC_01"},
		{notify.EventApproved, "APV_RES_01"},
		{notify.EventRejected, "APV_RES_01"},
	}
	for _, tc := range cases {
		if err := ch.Send(context.Background(), notify.Notification{UserID: "u1", Event: tc.event}); err != nil {
			t.Fatalf("Send(%s): %v", tc.event, err)
		}
		if tpl != tc.want {
			t.Fatalf("event %s: template %q, want %q", tc.event, tpl, tc.want)
		}
	}
}
