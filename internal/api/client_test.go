// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL), server
}

func TestProfile(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/profile", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "entry-code-123", body["code"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"customerId": "cust-42"}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Profile(ctx, "entry-code-123")
	require.NoError(t, err)
	assert.Equal(t, "cust-42", resp.CustomerID)
}

func TestInitialize(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/initialize", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cust-42", body["customerId"])
		assert.Equal(t, "a,b", body["device"])

		w.Write([]byte(`{
			"sessionId": "sess-1",
			"requestLimitAmount": 5,
			"usedAmount": 0,
			"returnCode": "200",
			"greetContent": "您好，想了解什麼資訊嗎？",
			"headerDescription": "使用前請詳閱{0}與{1}。",
			"urlObject": [
				{"urlText": "注意事項", "urlContent": "規定內文"},
				{"urlText": "隱私權政策", "urlLink": "https://example.com/privacy"}
			],
			"questionSuggest": [
				{"questionContent": "我上個月花了多少錢？", "questionText": ""}
			]
		}`))
	})

	ctx := context.Background()
	resp, err := client.Initialize(ctx, "cust-42")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, 5, resp.RequestLimitAmount)
	assert.Len(t, resp.URLObjects, 2)
	assert.Equal(t, "注意事項", resp.URLObjects[0].URLText)
	require.Len(t, resp.QuestionSuggest, 1)
	assert.Equal(t, "我上個月花了多少錢？", resp.QuestionSuggest[0].QuestionContent)
}

func TestInitializeMissingSession(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"returnCode": "200"}`))
	})

	_, err := client.Initialize(context.Background(), "cust-42")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestChat(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sess-1", body["sessionId"])
		assert.Equal(t, false, body["isDefault"])
		assert.Nil(t, body["tid"])
		assert.Nil(t, body["questionCondition"])

		w.Write([]byte(`{
			"code": "200",
			"requestId": "req-9",
			"requestLimitAmount": 5,
			"usedAmount": 3,
			"responseMessageObject": {
				"genText": "您上個月的餐飲消費共 3,200 元。",
				"deeplink": "app://card/overview",
				"similarQuestion": [{"questionContent": "那前個月呢？", "questionText": ""}]
			}
		}`))
	})

	sess := NewSession()
	sess.Start("sess-1")

	resp, err := client.Chat(context.Background(), sess, "我上個月餐飲花多少？")
	require.NoError(t, err)
	assert.True(t, resp.Code.Success())
	assert.Equal(t, "req-9", resp.RequestID)
	assert.Equal(t, "req-9", sess.RequestID())
	assert.False(t, resp.QuotaExhausted())
	assert.Equal(t, "您上個月的餐飲消費共 3,200 元。", resp.DisplayText())
}

func TestChatErrorMessagePrecedence(t *testing.T) {
	resp := &ChatResponse{
		Code: CodeSuccess,
		ResponseMessageObject: &ResponseMessageObject{
			GenText:      "generated",
			ErrorMessage: "部分資料暫時無法取得。",
		},
	}
	assert.Equal(t, "部分資料暫時無法取得。", resp.DisplayText())
}

func TestChatQuotaExhausted(t *testing.T) {
	limit, used := 5, 5
	resp := &ChatResponse{RequestLimitAmount: &limit, UsedAmount: &used}
	assert.True(t, resp.QuotaExhausted())

	used = 4
	assert.False(t, resp.QuotaExhausted())

	assert.False(t, (&ChatResponse{RequestLimitAmount: &limit}).QuotaExhausted())
	assert.False(t, (&ChatResponse{}).QuotaExhausted())
}

func TestChatRequiresSession(t *testing.T) {
	client := NewClient("http://localhost:0")
	_, err := client.Chat(context.Background(), NewSession(), "hello")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFeedbackCatalogue(t *testing.T) {
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/feedback", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["evaluate"])

		w.Write([]byte(`{
			"code": "200",
			"feedbackComment": [
				{"optionId": "01", "optionCentent": "回應速度太慢"},
				{"optionId": "02", "optionCentent": "金額計算有誤"}
			]
		}`))
	})

	sess := NewSession()
	sess.Start("sess-1")

	resp, err := client.Feedback(context.Background(), sess, "req-9")
	require.NoError(t, err)
	assert.Equal(t, []string{"回應速度太慢", "金額計算有誤"}, resp.Options())
	assert.Equal(t, "02", resp.OptionIDFor("金額計算有誤"))
	assert.Equal(t, "", resp.OptionIDFor("不存在的理由"))
}

func TestCommentWireSpelling(t *testing.T) {
	var raw []byte
	client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"code": "200", "message": "ok"}`))
	})

	sess := NewSession()
	sess.Start("sess-1")

	require.NoError(t, client.Like(context.Background(), sess, "req-9"))
	// The backend expects the misspelled field name.
	assert.Contains(t, string(raw), `"optionCentent":"good"`)
	assert.NotContains(t, string(raw), `"optionContent"`)

	require.NoError(t, client.Dislike(context.Background(), sess, "req-9", "", ""))
	assert.Contains(t, string(raw), `"optionCentent":"bad"`)

	require.NoError(t, client.Dislike(context.Background(), sess, "req-9", "01", "回應速度太慢"))
	assert.Contains(t, string(raw), `"optionId":"01"`)
	assert.Contains(t, string(raw), `"optionCentent":"回應速度太慢"`)
}

func TestServerErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"internal error", http.StatusInternalServerError, `{"code":"001","message":"boom"}`, ErrServerError},
		{"bad gateway", http.StatusBadGateway, ``, ErrServerError},
		{"unauthorized", http.StatusUnauthorized, ``, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ``, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			sess := NewSession()
			sess.Start("sess-1")

			_, err := client.Chat(context.Background(), sess, "hi")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "/chat", apiErr.Endpoint)
		})
	}
}

func TestIsServerError(t *testing.T) {
	assert.True(t, IsServerError(&APIError{Endpoint: "/chat", Status: 500}))
	assert.True(t, IsServerError(&APIError{Endpoint: "/chat", Status: 503}))
	assert.False(t, IsServerError(&APIError{Endpoint: "/chat", Status: 404}))
	assert.False(t, IsServerError(errors.New("plain")))
}

func TestSessionLifecycle(t *testing.T) {
	sess := NewSession()
	if sess.Ready() {
		t.Fatal("new session should not be ready")
	}

	sess.Start("sess-1")
	if !sess.Ready() || sess.ID() != "sess-1" {
		t.Fatalf("after Start: ready=%v id=%q", sess.Ready(), sess.ID())
	}

	sess.SetRequestID("req-1")
	if sess.RequestID() != "req-1" {
		t.Fatalf("request id = %q, want req-1", sess.RequestID())
	}

	// Re-initialization must drop the stale request id.
	sess.Start("sess-2")
	if sess.RequestID() != "" {
		t.Fatalf("request id survived re-init: %q", sess.RequestID())
	}

	sess.Reset()
	if sess.Ready() || sess.RequestID() != "" {
		t.Fatal("reset did not clear session")
	}
}
