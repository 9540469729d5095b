package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/investpal/investpal/internal/genui"
	"github.com/investpal/investpal/internal/log"
	"github.com/investpal/investpal/internal/store"
)

type fakeSessions struct {
	session   *store.Session
	getErr    error
	appendErr error

	appended []store.Message
}

func (f *fakeSessions) Session(ctx context.Context, sessionID string) (*store.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

func (f *fakeSessions) AppendMessages(ctx context.Context, sessionID string, messages ...store.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, messages...)
	return nil
}

type fakeResponder struct {
	text    string
	ui      *genui.Response
	textErr error
	uiErr   error

	lastUserID       string
	lastConversation []store.Message
}

func (f *fakeResponder) RespondText(ctx context.Context, userID string, conversation []store.Message) (string, error) {
	f.lastUserID = userID
	f.lastConversation = conversation
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.text, nil
}

func (f *fakeResponder) RespondUI(ctx context.Context, userID string, conversation []store.Message) (*genui.Response, error) {
	f.lastUserID = userID
	f.lastConversation = conversation
	if f.uiErr != nil {
		return nil, f.uiErr
	}
	return f.ui, nil
}

func newTestService(t *testing.T, sessions SessionStore, responder Responder) *Service {
	t.Helper()
	svc, err := New(Config{Sessions: sessions, Responder: responder, Logger: log.NewNop()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func testSession() *store.Session {
	return &store.Session{
		SessionID: "sess-1",
		UserID:    "user-1",
		Messages: []store.Message{
			{Role: store.RoleUser, Content: "Hi"},
			{Role: store.RoleAgent, Content: "Hello! How can I help with your investments?"},
		},
	}
}

func TestGenerateTextResponse(t *testing.T) {
	sessions := &fakeSessions{session: testSession()}
	responder := &fakeResponder{text: "Index funds are a solid core holding."}
	svc := newTestService(t, sessions, responder)

	got, err := svc.GenerateTextResponse(context.Background(), "sess-1", "Are index funds good?")
	if err != nil {
		t.Fatalf("GenerateTextResponse() error = %v", err)
	}
	if got != "Index funds are a solid core holding." {
		t.Errorf("GenerateTextResponse() = %q", got)
	}

	// The responder sees the full history plus the new user message, for
	// the session's owner.
	if responder.lastUserID != "user-1" {
		t.Errorf("responder user = %q, want user-1", responder.lastUserID)
	}
	if len(responder.lastConversation) != 3 {
		t.Fatalf("conversation length = %d, want 3", len(responder.lastConversation))
	}
	last := responder.lastConversation[2]
	if last.Role != store.RoleUser || last.Content != "Are index funds good?" {
		t.Errorf("last conversation message = %+v", last)
	}

	// Both turn messages persisted, user first.
	if len(sessions.appended) != 2 {
		t.Fatalf("appended %d messages, want 2", len(sessions.appended))
	}
	if sessions.appended[0].Role != store.RoleUser || sessions.appended[1].Role != store.RoleAgent {
		t.Errorf("appended roles = %v, %v", sessions.appended[0].Role, sessions.appended[1].Role)
	}
	if sessions.appended[0].CreatedAt.IsZero() || sessions.appended[1].CreatedAt.IsZero() {
		t.Error("appended messages missing timestamps")
	}
}

func TestGenerateTextResponseSessionNotFound(t *testing.T) {
	sessions := &fakeSessions{getErr: store.ErrSessionNotFound}
	svc := newTestService(t, sessions, &fakeResponder{})

	_, err := svc.GenerateTextResponse(context.Background(), "missing", "hello")
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
	if len(sessions.appended) != 0 {
		t.Errorf("appended %d messages, want 0", len(sessions.appended))
	}
}

func TestGenerateTextResponseNoWriteOnFailure(t *testing.T) {
	sessions := &fakeSessions{session: testSession()}
	responder := &fakeResponder{textErr: errors.New("model unavailable")}
	svc := newTestService(t, sessions, responder)

	if _, err := svc.GenerateTextResponse(context.Background(), "sess-1", "hello"); err == nil {
		t.Fatal("GenerateTextResponse() succeeded, want error")
	}
	if len(sessions.appended) != 0 {
		t.Errorf("appended %d messages after failed generation, want 0", len(sessions.appended))
	}
}

func TestGenerateTextResponsePersistFailureSurfaces(t *testing.T) {
	sessions := &fakeSessions{session: testSession(), appendErr: errors.New("connection reset")}
	svc := newTestService(t, sessions, &fakeResponder{text: "ok"})

	if _, err := svc.GenerateTextResponse(context.Background(), "sess-1", "hello"); err == nil {
		t.Error("GenerateTextResponse() succeeded, want persistence error")
	}
}

func TestGenerateUIResponse(t *testing.T) {
	sessions := &fakeSessions{session: testSession()}
	ui := &genui.Response{Components: genui.ComponentList{
		&genui.Text{
			BaseComponent: genui.BaseComponent{Type: genui.TypeText, ID: "c1"},
			Content:       "Your portfolio leans heavily on tech.",
		},
		&genui.AllocationChart{
			BaseComponent:  genui.BaseComponent{Type: genui.TypeAllocationChart, ID: "c2"},
			AllocationType: genui.AllocationSector,
			Allocations:    []genui.AllocationItem{{Label: "Technology", Value: 80000, Percentage: 80}},
		},
	}}
	svc := newTestService(t, sessions, &fakeResponder{ui: ui})

	got, err := svc.GenerateUIResponse(context.Background(), "sess-1", "Show my allocation")
	if err != nil {
		t.Fatalf("GenerateUIResponse() error = %v", err)
	}
	if len(got.Components) != 2 {
		t.Fatalf("got %d components, want 2", len(got.Components))
	}

	// The durable log carries the flattened JSON, which must itself decode
	// back into the same component structure.
	if len(sessions.appended) != 2 {
		t.Fatalf("appended %d messages, want 2", len(sessions.appended))
	}
	agentMsg := sessions.appended[1]
	if agentMsg.Role != store.RoleAgent {
		t.Errorf("second appended role = %v, want agent", agentMsg.Role)
	}
	if !json.Valid([]byte(agentMsg.Content)) {
		t.Fatalf("flattened content is not JSON: %q", agentMsg.Content)
	}
	reparsed, err := genui.ParseResponse([]byte(agentMsg.Content))
	if err != nil {
		t.Fatalf("reparsing flattened content: %v", err)
	}
	if len(reparsed.Components) != 2 {
		t.Errorf("reparsed %d components, want 2", len(reparsed.Components))
	}
	if !strings.Contains(agentMsg.Content, "allocation_chart") {
		t.Errorf("flattened content missing discriminator: %q", agentMsg.Content)
	}
}

func TestGenerateUIResponseNoWriteOnFailure(t *testing.T) {
	sessions := &fakeSessions{session: testSession()}
	svc := newTestService(t, sessions, &fakeResponder{uiErr: errors.New("invalid payload")})

	if _, err := svc.GenerateUIResponse(context.Background(), "sess-1", "hello"); err == nil {
		t.Fatal("GenerateUIResponse() succeeded, want error")
	}
	if len(sessions.appended) != 0 {
		t.Errorf("appended %d messages after failed generation, want 0", len(sessions.appended))
	}
}
