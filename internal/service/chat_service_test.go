package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis-review-be/internal/catalog"
	"aegis-review-be/internal/dto"
	"aegis-review-be/internal/repository/memory"
	"aegis-review-be/pkg/llm"
	"aegis-review-be/pkg/store"
)

// fakeProvider replays canned deltas and records the prompt it was given.
type fakeProvider struct {
	deltas []string
	err    error

	lastSystem  string
	lastHistory []llm.Message
	release     chan struct{} // when set, the stream stalls until closed
}

func (f *fakeProvider) Chat(ctx context.Context, system string, history []llm.Message, opts ...llm.Option) (string, error) {
	events, err := f.ChatStream(ctx, system, history, opts...)
	if err != nil {
		return "", err
	}
	return llm.Collect(events)
}

func (f *fakeProvider) ChatStream(ctx context.Context, system string, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamEvent, error) {
	f.lastSystem = system
	f.lastHistory = history

	out := make(chan llm.StreamEvent)
	go func() {
		defer close(out)
		if f.release != nil {
			<-f.release
		}
		if f.err != nil {
			out <- llm.StreamEvent{Err: f.err}
			return
		}
		for _, d := range f.deltas {
			out <- llm.StreamEvent{Delta: d}
		}
		out <- llm.StreamEvent{Done: true}
	}()
	return out, nil
}

func newTestChatService(t *testing.T, provider llm.Provider) (IChatService, *memory.SessionRepository, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	repo := memory.NewSessionRepository()
	svc := NewChatService(repo, cat, provider, nil, nil, nopLogger{})
	return svc, repo, cat
}

func TestChatPersistsNormalizedTurns(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"**Risk** is ", "elevated. APPROVE ", "or OVERRIDE?"}}
	svc, repo, cat := newTestChatService(t, provider)

	session := store.NewSession("s1")
	repo.Save(session)
	caseID := cat.IDs()[0]

	reply, err := svc.Chat(context.Background(), &dto.ChatRequest{
		SessionId: "s1",
		CaseId:    caseID,
		Message:   "Why is this flagged?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Risk is elevated. APPROVE or OVERRIDE?", reply)

	turns := session.History(caseID)
	require.Len(t, turns, 2)
	assert.Equal(t, store.RoleAnalyst, turns[0].Role)
	assert.Equal(t, "Why is this flagged?", turns[0].Content)
	assert.Equal(t, store.RoleAssistant, turns[1].Role)
	assert.NotContains(t, turns[1].Content, "**")
}

func TestChatInjectsLiveSessionMetrics(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}}
	svc, repo, cat := newTestChatService(t, provider)

	session := store.NewSession("s1")
	ids := cat.IDs()
	session.ToggleApprove(ids[0])
	session.SubmitOverride(ids[1], "bad flag")
	repo.Save(session)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		SessionId: "s1",
		CaseId:    ids[0],
		Message:   "status?",
	})
	require.NoError(t, err)

	assert.Contains(t, provider.lastSystem, "Compliance Rate: 50%")
	assert.Contains(t, provider.lastSystem, "Overrides this shift: 1")
	assert.Contains(t, provider.lastSystem, "Case "+ids[0]+": APPROVED")
	// The analyst message rides at the end of the history
	require.NotEmpty(t, provider.lastHistory)
	assert.Equal(t, "status?", provider.lastHistory[len(provider.lastHistory)-1].Content)
}

func TestChatDetachedUsesFallbacks(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}}
	svc, _, cat := newTestChatService(t, provider)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		CaseId:  cat.IDs()[0],
		Message: "hello",
	})
	require.NoError(t, err)
	assert.Contains(t, provider.lastSystem, "Compliance Rate: 100%")
	assert.Contains(t, provider.lastSystem, "No decisions recorded")
}

func TestChatChallengeCountAlias(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}}
	svc, _, cat := newTestChatService(t, provider)

	challenge := 4.0
	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		CaseId:         cat.IDs()[0],
		Message:        "hello",
		ChallengeCount: &challenge,
	})
	require.NoError(t, err)
	assert.Contains(t, provider.lastSystem, "Disagreements this shift: 4")
}

func TestChatUnknownCase(t *testing.T) {
	svc, _, _ := newTestChatService(t, &fakeProvider{})

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{CaseId: "999", Message: "hi"})
	assert.ErrorIs(t, err, ErrUnknownCase)
}

func TestChatDisabledCase(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}}
	cat, err := catalog.Parse([]byte(`cases:
  - id: "301"
    title: Closed Channel
    profile: {name: A. Non, status: Active}
    narrative: Narrative.
    risk_score: 10
    confidence: Low
    recommendation: APPROVE
    outcomes: {approve: fine, override: fine}
    truth_note: n/a
    chat_enabled: false
`))
	require.NoError(t, err)
	repo := memory.NewSessionRepository()
	svc := NewChatService(repo, cat, provider, nil, nil, nopLogger{})

	_, err = svc.Chat(context.Background(), &dto.ChatRequest{CaseId: "301", Message: "hi"})
	assert.ErrorIs(t, err, ErrChatDisabled)
}

func TestChatRejectsConcurrentTurnSameCase(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}, release: make(chan struct{})}
	svc, repo, cat := newTestChatService(t, provider)

	repo.Save(store.NewSession("s1"))
	caseID := cat.IDs()[0]

	first, err := svc.StreamChat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "one"})
	require.NoError(t, err)

	_, err = svc.StreamChat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "two"})
	assert.ErrorIs(t, err, ErrTurnInFlight)

	close(provider.release)
	_, err = llm.Collect(first)
	require.NoError(t, err)

	// Slot is free again once the stream finishes
	_, err = svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "three"})
	require.NoError(t, err)
}

func TestChatDropsStaleCompletionAfterReset(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"late reply"}, release: make(chan struct{})}
	svc, repo, cat := newTestChatService(t, provider)

	session := store.NewSession("s1")
	repo.Save(session)
	caseID := cat.IDs()[0]

	stream, err := svc.StreamChat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "hi"})
	require.NoError(t, err)

	// The shift restarts while the completion is in flight
	session.Reset()
	close(provider.release)

	_, err = llm.Collect(stream)
	require.NoError(t, err)
	assert.Empty(t, session.History(caseID))
}

func TestChatStreamErrorLeavesNoTurns(t *testing.T) {
	provider := &fakeProvider{err: assert.AnError}
	svc, repo, cat := newTestChatService(t, provider)

	session := store.NewSession("s1")
	repo.Save(session)
	caseID := cat.IDs()[0]

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "hi"})
	require.Error(t, err)
	assert.Empty(t, session.History(caseID))

	// An errored turn does not wedge the slot
	provider.err = nil
	provider.deltas = []string{"recovered"}
	reply, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "again"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(reply, "recovered"))
}

func TestChatRejectsBlankMessage(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}}
	svc, repo, cat := newTestChatService(t, provider)

	session := store.NewSession("s1")
	repo.Save(session)
	caseID := cat.IDs()[0]

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "   \n"})
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, session.History(caseID))
}

func TestChatDetachedReplaysTranscript(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}}
	svc, _, cat := newTestChatService(t, provider)
	caseID := cat.IDs()[0]

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{
		CaseId: caseID,
		Messages: []dto.ChatMessageDTO{
			{Role: store.RoleAnalyst, Content: "first question"},
			{Role: store.RoleAssistant, Content: "first answer"},
			{Role: store.RoleAnalyst, Content: "second question"},
		},
	})
	require.NoError(t, err)

	require.Len(t, provider.lastHistory, 3)
	assert.Equal(t, "second question", provider.lastHistory[2].Content)
}

func TestChatDetachedClientsNotGated(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}, release: make(chan struct{})}
	svc, _, cat := newTestChatService(t, provider)
	caseID := cat.IDs()[0]

	// Two independent clients without sessions hit the same case at once
	first, err := svc.StreamChat(context.Background(), &dto.ChatRequest{CaseId: caseID, Message: "hi"})
	require.NoError(t, err)
	second, err := svc.StreamChat(context.Background(), &dto.ChatRequest{CaseId: caseID, Message: "hello"})
	require.NoError(t, err)

	close(provider.release)
	_, err = llm.Collect(first)
	require.NoError(t, err)
	_, err = llm.Collect(second)
	require.NoError(t, err)
}

func TestChatTurnSlotReleasedAndRemoved(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"ok"}}
	svc, repo, cat := newTestChatService(t, provider)

	session := store.NewSession("s1")
	repo.Save(session)
	caseID := cat.IDs()[0]

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "hi"})
	require.NoError(t, err)

	cs := svc.(*chatService)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	assert.Empty(t, cs.inFlight)
}

func TestChatFollowUpSeesPriorExchange(t *testing.T) {
	provider := &fakeProvider{deltas: []string{"first answer"}}
	svc, repo, cat := newTestChatService(t, provider)

	session := store.NewSession("s1")
	repo.Save(session)
	caseID := cat.IDs()[0]

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "first question"})
	require.NoError(t, err)

	// Once a turn can be submitted again, its predecessor is on record
	_, err = svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1", CaseId: caseID, Message: "second question"})
	require.NoError(t, err)

	require.Len(t, provider.lastHistory, 3)
	assert.Equal(t, "first question", provider.lastHistory[0].Content)
	assert.Equal(t, "first answer", provider.lastHistory[1].Content)
	assert.Equal(t, "second question", provider.lastHistory[2].Content)
}
