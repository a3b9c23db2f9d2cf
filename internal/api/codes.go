// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// BACKEND RESPONSE CODES
// =============================================================================

// Code is a backend response code. "200" is the only success value;
// every other code identifies a rejection category with its own
// user-facing text and its own presentation rules.
type Code string

const (
	CodeSystem             Code = "001"
	CodeBusinessKeyword    Code = "002"
	CodeSensitiveData      Code = "003"
	CodeKeyword            Code = "004"
	CodeTopicContent       Code = "005"
	CodeTokenLimit         Code = "006"
	CodeIdleTimeout        Code = "007"
	CodeStoreLimit         Code = "008"
	CodeMultipleCategories Code = "009"
	CodeLowSimilarity      Code = "010"
	CodeSuccess            Code = "200"
)

// Success reports whether the code is the success code.
func (c Code) Success() bool { return c == CodeSuccess }

// Known reports whether the code is one the client understands.
// Unrecognized codes are treated as system errors by callers.
func (c Code) Known() bool {
	_, ok := codeTexts[c]
	return ok || c == CodeSuccess
}

// Canonical user-facing texts per rejection code. UserMessage appends
// the "(Error Code)" suffix to the system text.
var codeTexts = map[Code]string{
	CodeSystem:             "目前系統發生非預期的狀況，請您稍後再試或聯繫客服。",
	CodeBusinessKeyword:    "由於目前只提供信用卡「消費分析」的服務，建議您詢問其他問題。",
	CodeSensitiveData:      "請勿輸入個人資料 (如身分證字號、聯絡方式等)。建議您詢問其他問題。",
	CodeKeyword:            "無法回應不合適的內容。建議您詢問其他問題。",
	CodeTopicContent:       "無法回應不合適的內容。建議您詢問其他問題。",
	CodeTokenLimit:         "您今日的詢問次數已達上限，請至「信用卡總覽」繼續查詢，或於隔日再次使用。",
	CodeIdleTimeout:        "因長時間未操作，系統已自動登出，請重新登入。",
	CodeStoreLimit:         "目前一次只能查詢 2 間店家的消費資訊。建議您分批查詢或再次詢問。",
	CodeMultipleCategories: "目前一次只能查詢 1 種消費類別的資訊。建議您分批查詢或再次詢問。",
	CodeLowSimilarity:      "感謝您的詢問與回覆。由於目前只提供信用卡「消費分析」的服務，建議您詢問其他問題。",
}

// UserMessage resolves a code to its user-facing text. Success resolves
// to the empty string. Unknown codes fall back to the system text. The
// system text carries a literal "(Error Code)" marker the backend's
// support flows key on.
func (c Code) UserMessage() string {
	if c == CodeSuccess {
		return ""
	}
	text, ok := codeTexts[c]
	if !ok {
		c, text = CodeSystem, codeTexts[CodeSystem]
	}
	if c == CodeSystem {
		return text + "(Error Code)"
	}
	return text
}

// Fatal reports whether the code ends the session. Input stays
// disabled after a fatal turn until the conversation is restarted.
func (c Code) Fatal() bool {
	return c == CodeTokenLimit || c == CodeIdleTimeout
}

// ContentPolicy reports whether the code is a content-policy rejection.
// These turns keep minimal feedback affordances so users can still rate
// the refusal.
func (c Code) ContentPolicy() bool {
	switch c {
	case CodeSensitiveData, CodeKeyword, CodeBusinessKeyword,
		CodeTopicContent, CodeLowSimilarity:
		return true
	}
	return false
}
