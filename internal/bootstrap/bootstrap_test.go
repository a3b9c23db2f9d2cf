// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/spendtalk-tui/internal/api"
)

func startBackend(t *testing.T, profileBody, initBody string, profileStatus, initStatus int) *api.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/profile":
			w.WriteHeader(profileStatus)
			w.Write([]byte(profileBody))
		case "/initialize":
			w.WriteHeader(initStatus)
			w.Write([]byte(initBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return api.NewClient(server.URL)
}

const initPayload = `{
	"sessionId": "sess-1",
	"requestLimitAmount": 5,
	"usedAmount": 2,
	"returnCode": "200",
	"greetContent": "您好，想了解什麼資訊嗎？",
	"headerDescription": "使用前請詳閱{0}與{1}。",
	"urlObject": [
		{"urlText": "注意事項", "urlContent": "使用規定內文"},
		{"urlText": "隱私權政策", "urlLink": "https://example.com/privacy"}
	],
	"questionSuggest": [
		{"questionContent": "使用介紹", "questionText": "此為對話式功能搜尋服務。"},
		{"questionContent": "我上個月花了多少錢？", "questionText": ""},
		{"questionContent": "常見問題", "questionText": "以下是常見問題…"}
	]
}`

func TestRun(t *testing.T) {
	client := startBackend(t, `{"customerId": "cust-1"}`, initPayload, 200, 200)

	res, err := Run(context.Background(), client, "entry-code")
	require.NoError(t, err)

	assert.True(t, res.Session.Ready())
	assert.Equal(t, "sess-1", res.Session.ID())
	assert.Equal(t, "您好，想了解什麼資訊嗎？", res.Greeting)
	assert.False(t, res.QuotaExhausted)
	assert.Equal(t, 5, res.RequestLimitAmount)

	// Placeholders resolve to the bound labels.
	assert.Equal(t, "使用前請詳閱注意事項與隱私權政策。", res.HeaderDescription)

	assert.Equal(t, "注意事項", res.NoticeLabel)
	assert.Equal(t, "使用規定內文", res.NoticeContent)

	// The introduction entry becomes the intro text, not a suggestion.
	assert.Equal(t, "此為對話式功能搜尋服務。", res.IntroductionText)
	require.Len(t, res.Suggested, 2)
	assert.Equal(t, "我上個月花了多少錢？", res.Suggested[0].DisplayText)
	assert.Equal(t, "以下是常見問題…", res.Suggested[1].Prefilled)
}

func TestRunQuotaAlreadyExhausted(t *testing.T) {
	body := `{"sessionId": "sess-1", "requestLimitAmount": 5, "usedAmount": 5, "returnCode": "200"}`
	client := startBackend(t, `{"customerId": "cust-1"}`, body, 200, 200)

	res, err := Run(context.Background(), client, "entry-code")
	require.NoError(t, err)
	assert.True(t, res.QuotaExhausted)
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name          string
		profileBody   string
		profileStatus int
		initStatus    int
	}{
		{"profile transport failure", ``, 500, 200},
		{"empty customer id", `{"customerId": "  "}`, 200, 200},
		{"initialize failure", `{"customerId": "cust-1"}`, 200, 503},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startBackend(t, tt.profileBody, initPayload, tt.profileStatus, tt.initStatus)
			_, err := Run(context.Background(), client, "entry-code")
			require.Error(t, err)
		})
	}
}

func TestRenderHeaderWithoutBindings(t *testing.T) {
	assert.Equal(t, "模板{0}與{1}", renderHeader("模板{0}與{1}", []api.URLObject{{URLText: "僅一個"}}))
	assert.Equal(t, "", renderHeader("", nil))
}

func TestSplitIntroductionNoMarker(t *testing.T) {
	intro, recs := splitIntroduction([]api.QuestionSuggest{
		{QuestionContent: "我上個月花多少？"},
	})
	assert.Equal(t, "", intro)
	require.Len(t, recs, 1)
}
