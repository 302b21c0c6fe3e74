package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakehouse/internal/assist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type responderStub struct {
	result *assist.Result
	err    error
	asked  []string
}

func (s *responderStub) Respond(_ context.Context, text string) (*assist.Result, error) {
	s.asked = append(s.asked, text)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestApp(chat, assistant responder) *application {
	return &application{
		logger:    zap.NewNop().Sugar(),
		chat:      chat,
		assistant: assistant,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestChatHandler(t *testing.T) {
	t.Run("returns the pipeline result", func(t *testing.T) {
		stub := &responderStub{result: &assist.Result{
			Reply:    "Here is 1 option I found for you: Black Forest.",
			Products: []assist.Product{{ID: 1, Name: "Black Forest"}},
			Filters:  assist.Filter{Category: assist.CategoryCake, Limit: 10},
		}}
		app := newTestApp(stub, nil)

		rr := postJSON(t, app.chatHandler, `{"message":"show me cakes"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, []string{"show me cakes"}, stub.asked)

		var envelope struct {
			Data assist.Result `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
		assert.Equal(t, "Here is 1 option I found for you: Black Forest.", envelope.Data.Reply)
		assert.Len(t, envelope.Data.Products, 1)
		assert.Equal(t, assist.CategoryCake, envelope.Data.Filters.Category)
	})

	t.Run("rejects a missing message", func(t *testing.T) {
		stub := &responderStub{}
		app := newTestApp(stub, nil)

		rr := postJSON(t, app.chatHandler, `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, stub.asked)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		app := newTestApp(&responderStub{}, nil)

		rr := postJSON(t, app.chatHandler, `{"message":"hi","extra":true}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps a blank query to 400", func(t *testing.T) {
		stub := &responderStub{err: assist.ErrEmptyQuery}
		app := newTestApp(stub, nil)

		rr := postJSON(t, app.chatHandler, `{"message":"   "}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("hides pipeline failures behind a 500", func(t *testing.T) {
		stub := &responderStub{err: context.DeadlineExceeded}
		app := newTestApp(stub, nil)

		rr := postJSON(t, app.chatHandler, `{"message":"cakes"}`)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "the server encountered a problem")
	})
}

func TestAssistantHandler(t *testing.T) {
	stub := &responderStub{result: &assist.Result{
		Reply:       "Here are 2 options I found for you: A, B.",
		Products:    []assist.Product{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		Filters:     assist.Filter{Limit: 10},
		Explanation: "Both match your budget.",
	}}
	app := newTestApp(nil, stub)

	rr := postJSON(t, app.assistantHandler, `{"message":"something sweet under 500"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var envelope struct {
		Data assist.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Equal(t, "Both match your budget.", envelope.Data.Explanation)
	assert.Equal(t, []string{"something sweet under 500"}, stub.asked)
}
