package messages_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/db"
	"github.com/oggyb/udinder/internal/events"
	"github.com/oggyb/udinder/internal/service/matches"
	"github.com/oggyb/udinder/internal/service/messages"
	"github.com/oggyb/udinder/internal/service/users"
	"github.com/oggyb/udinder/internal/testutil"
)

// setupService seeds a small graph for messaging tests.
//
// Dataset:
//   - users 1, 2, 3
//   - 1 <-> 2 mutual
//   - 1 -> 3 only
func setupService(t *testing.T) (*messages.Service, *app.AppContext, *testutil.Recorder) {
	t.Helper()
	appCtx, rec := testutil.NewAppContext(t)
	for i := uint64(1); i <= 3; i++ {
		testutil.SeedUser(t, appCtx.DB, i, fmt.Sprintf("u%d@example.com", i), "pw")
	}
	testutil.SeedLike(t, appCtx.DB, 1, 2)
	testutil.SeedLike(t, appCtx.DB, 2, 1)
	testutil.SeedLike(t, appCtx.DB, 1, 3)
	return messages.NewMessageService(appCtx), appCtx, rec
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := setupService(t)

	msg, err := svc.Send(ctx, 1, 2, "hi")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "hi", msg.Content)

	// either side of a mutual match may write
	_, err = svc.Send(ctx, 2, 1, "hey")
	require.NoError(t, err)

	evs := rec.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, events.TypeMessageSent, evs[0].Type)
	assert.Equal(t, msg.ID, evs[0].EntityID)
}

func TestSendRejects(t *testing.T) {
	ctx := context.Background()
	svc, appCtx, rec := setupService(t)

	tests := []struct {
		name             string
		sender, receiver uint64
		content          string
		want             error
	}{
		{"receiver absent", 1, 42, "hi", messages.ErrReceiverNotFound},
		{"self", 1, 1, "hi", messages.ErrSelfMessage},
		{"one-way like", 1, 3, "hi", messages.ErrNoMatch},
		{"one-way like reversed", 3, 1, "hi", messages.ErrNoMatch},
		{"sender absent", 42, 1, "hi", messages.ErrSenderNotFound},
		{"blank", 1, 2, "  ", messages.ErrEmptyContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tc.sender, tc.receiver, tc.content)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var n int64
	require.NoError(t, appCtx.DB.Model(&db.Message{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, rec.Events())
}

func TestInboxIsReceiverOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	sent := map[uint64]bool{}
	for i := 0; i < 3; i++ {
		m, err := svc.Send(ctx, 1, 2, fmt.Sprintf("to 2 #%d", i))
		require.NoError(t, err)
		sent[m.ID] = true
	}
	_, err := svc.Send(ctx, 2, 1, "to 1")
	require.NoError(t, err)

	inbox, err := svc.ListForUser(ctx, 2)
	require.NoError(t, err)
	got := map[uint64]bool{}
	for _, m := range inbox {
		assert.Equal(t, uint64(2), m.ReceiverID)
		got[m.ID] = true
	}
	assert.Equal(t, sent, got)

	inbox, err = svc.ListForUser(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	_, err = svc.ListForUser(ctx, 42)
	assert.ErrorIs(t, err, messages.ErrUserNotFound)
}

func TestListPage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	for i := 0; i < 5; i++ {
		_, err := svc.Send(ctx, 1, 2, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	var all []db.Message
	token := ""
	for pages := 0; ; pages++ {
		require.Less(t, pages, 5)
		page, err := svc.ListPage(ctx, 2, token, 2)
		require.NoError(t, err)
		all = append(all, page.Messages...)
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}
	require.Len(t, all, 5)
	for i, m := range all {
		assert.Equal(t, fmt.Sprintf("m%d", i), m.Content)
	}

	_, err := svc.ListPage(ctx, 2, "garbage!", 2)
	assert.ErrorIs(t, err, messages.ErrInvalidPageToken)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	m, err := svc.Send(ctx, 1, 2, "oops")
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "oops", deleted.Content)

	_, err = svc.Delete(ctx, m.ID)
	assert.ErrorIs(t, err, messages.ErrMessageNotFound)
}

// TestRegisterLikeMessageScenario walks the whole flow through the router.
func TestRegisterLikeMessageScenario(t *testing.T) {
	appCtx, _ := testutil.NewAppContext(t)
	r := testutil.NewRouter(appCtx,
		users.NewRegistrar(appCtx),
		matches.NewRegistrar(appCtx),
		messages.NewRegistrar(appCtx),
	)

	for id, email := range map[int]string{1: "a@x.com", 2: "b@x.com"} {
		w := testutil.Do(t, r, http.MethodPost, "/users/add", map[string]any{
			"id": id, "email": email, "name": fmt.Sprintf("user %d", id), "password": "pw",
		}, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var like map[string]any
	w := testutil.Do(t, r, http.MethodPost, "/like/1/2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &like)
	assert.Equal(t, "Like registered", like["message"])

	w = testutil.Do(t, r, http.MethodPost, "/like/2/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &like)
	assert.Equal(t, "It's a match!", like["message"])

	w = testutil.Do(t, r, http.MethodGet, "/matches/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cards []matches.Summary
	testutil.Decode(t, w, &cards)
	require.Len(t, cards, 1)
	assert.Equal(t, uint64(2), cards[0].ID)
	assert.Equal(t, "user 2", cards[0].Name)

	w = testutil.Do(t, r, http.MethodPost, "/messages/", map[string]any{
		"sender_id": 1, "receiver_id": 2, "content": "hi",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored db.Message
	testutil.Decode(t, w, &stored)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, "hi", stored.Content)

	w = testutil.Do(t, r, http.MethodGet, "/messages/2/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox []db.Message
	testutil.Decode(t, w, &inbox)
	require.Len(t, inbox, 1)
	assert.Equal(t, stored.ID, inbox[0].ID)

	w = testutil.Do(t, r, http.MethodGet, "/messages/1/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = testutil.Do(t, r, http.MethodGet, "/messages/9/", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.Do(t, r, http.MethodPost, "/messages/", map[string]any{
		"sender_id": 1, "receiver_id": 1, "content": "me",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.Do(t, r, http.MethodDelete, fmt.Sprintf("/messages/%d/", stored.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = testutil.Do(t, r, http.MethodDelete, fmt.Sprintf("/messages/%d/", stored.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInboxPagingHeader(t *testing.T) {
	svc, appCtx, _ := setupService(t)
	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), 1, 2, "x")
		require.NoError(t, err)
	}
	r := testutil.NewRouter(appCtx, messages.NewRegistrar(appCtx))

	w := testutil.Do(t, r, http.MethodGet, "/messages/2/?limit=2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page []db.Message
	testutil.Decode(t, w, &page)
	assert.Len(t, page, 2)
	next := w.Header().Get(messages.NextPageHeader)
	require.NotEmpty(t, next)

	w = testutil.Do(t, r, http.MethodGet, "/messages/2/?limit=2&page_token="+next, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, w, &page)
	assert.Len(t, page, 1)
	assert.Empty(t, w.Header().Get(messages.NextPageHeader))

	w = testutil.Do(t, r, http.MethodGet, "/messages/2/?limit=zero", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
