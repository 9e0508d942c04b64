package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ntrakiyski/rag-chat-api/internal/pkg/logger"
	"github.com/Ntrakiyski/rag-chat-api/internal/session"
)

func runInputNode(t *testing.T, store session.Store, fc *Context) Action {
	t.Helper()
	node := NewInputNode(store, logger.NewNopLogger())

	exec, err := node.Execute(context.Background(), fc, nil)
	require.NoError(t, err)
	action, err := node.Finalize(context.Background(), fc, nil, exec)
	require.NoError(t, err)
	return action
}

func TestInputNodeAcceptsContentInput(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	rec, err := store.Create(context.Background(), "website", "https://example.com")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "website", InputValue: "https://example.com"}
	action := runInputNode(t, store, fc)

	assert.Equal(t, ActionDefault, action)
	stored, err := store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusProcessing, stored.Status, "accepted input leaves the status alone")
}

func TestInputNodeNoneTypeLeavesSessionContextless(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	rec, err := store.Create(context.Background(), "none", "")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "none"}
	action := runInputNode(t, store, fc)

	assert.Equal(t, ActionSkip, action)
	stored, err := store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusReady, stored.Status)
	assert.False(t, stored.ContextIsReady)
	assert.Equal(t, "No content provided, chat without context.", stored.Message)
}

func TestInputNodeMissingValue(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	rec, err := store.Create(context.Background(), "website", "")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "website"}
	action := runInputNode(t, store, fc)

	assert.Equal(t, ActionError, action)
	assert.Equal(t, "Input type or value missing for content processing.", fc.ErrorMessage)

	stored, err := store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusError, stored.Status)
	assert.Equal(t, "Input type or value missing for content processing.", stored.Message)
}

func TestInputNodeInvalidType(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	rec, err := store.Create(context.Background(), "audio", "talk.mp3")
	require.NoError(t, err)

	fc := &Context{SessionID: rec.UserSessionId, InputType: "audio", InputValue: "talk.mp3"}
	action := runInputNode(t, store, fc)

	assert.Equal(t, ActionError, action)
	stored, err := store.Get(context.Background(), rec.UserSessionId)
	require.NoError(t, err)
	assert.Equal(t, session.StatusError, stored.Status)
	assert.Equal(t, "Invalid input type: audio. Must be 'website' or 'pdf'.", stored.Message)
}
