// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dialog

import (
	"reflect"
	"testing"
)

func revealedMap(entries ...Entry) map[string]bool {
	m := make(map[string]bool, len(entries))
	for _, e := range entries {
		m[e.Key] = true
	}
	return m
}

func TestVisibilityRequiresReveal(t *testing.T) {
	e := newEntry(RoleSystem, "答案", "q1")
	e.Recommendations = []Recommendation{{DisplayText: "追問"}}

	got := ComputeVisibility(e, 0, []Entry{e}, map[string]bool{}, map[string]bool{})
	if got != (Visibility{}) {
		t.Errorf("visibility before reveal = %+v, want zero", got)
	}

	got = ComputeVisibility(e, 0, []Entry{e}, revealedMap(e), map[string]bool{})
	if !got.ShowFeedback || !got.ShowRecommendations {
		t.Errorf("visibility after reveal = %+v", got)
	}
}

func TestVisibilityCardEntryWaitsForCard(t *testing.T) {
	e := newEntry(RoleSystem, "答案", "q1")
	e.HasCard = true
	e.DeepLink = "app://card/overview"

	typing := revealedMap(e)

	// Typing done but card not yet revealed: nothing shows.
	got := ComputeVisibility(e, 0, []Entry{e}, typing, map[string]bool{})
	if got != (Visibility{}) {
		t.Errorf("visibility before card reveal = %+v, want zero", got)
	}

	got = ComputeVisibility(e, 0, []Entry{e}, typing, revealedMap(e))
	if !got.ShowFeedback || !got.ShowGoTo {
		t.Errorf("visibility after card reveal = %+v", got)
	}
}

func TestVisibilityIntroduction(t *testing.T) {
	e := newEntry(RoleSystem, DefaultIntroduction, "q1")
	e.IsIntroduction = true
	e.WithFeedback = False
	e.Recommendations = []Recommendation{{DisplayText: "我上個月花多少？"}}

	got := ComputeVisibility(e, 0, []Entry{e}, revealedMap(e), map[string]bool{})
	want := Visibility{ShowNotice: true, ShowRecommendations: true}
	if got != want {
		t.Errorf("introduction visibility = %+v, want %+v", got, want)
	}

	bare := newEntry(RoleSystem, DefaultIntroduction, "q1")
	bare.IsIntroduction = true
	got = ComputeVisibility(bare, 0, []Entry{bare}, revealedMap(bare), map[string]bool{})
	if got.ShowRecommendations {
		t.Error("empty recommendation list should not render a panel")
	}
}

func TestVisibilityTokenLimit(t *testing.T) {
	e := newEntry(RoleSystem, "已達上限", "q1")
	e.ErrorKind = KindTokenLimit
	e.ShowGoToAction = true
	// Even an explicit true must not override the quota rule.
	e.WithFeedback = True
	e.Recommendations = []Recommendation{{DisplayText: "追問"}}

	got := ComputeVisibility(e, 0, []Entry{e}, revealedMap(e), map[string]bool{})
	want := Visibility{ShowGoTo: true}
	if got != want {
		t.Errorf("token limit visibility = %+v, want %+v", got, want)
	}
}

func TestVisibilityContentPolicy(t *testing.T) {
	for _, kind := range []ErrorKind{KindSensitiveData, KindKeyword, KindBusinessKeyword, KindTopicContent, KindLowSimilarity} {
		e := newEntry(RoleSystem, "拒絕", "q1")
		e.ErrorKind = kind
		e.Recommendations = []Recommendation{{DisplayText: "別的問題"}}

		got := ComputeVisibility(e, 0, []Entry{e}, revealedMap(e), map[string]bool{})
		if !got.ShowFeedback {
			t.Errorf("%s: feedback hidden", kind)
		}
		if got.ShowGoTo {
			t.Errorf("%s: go-to shown on a content-policy entry", kind)
		}
		if !got.ShowRecommendations {
			t.Errorf("%s: recommendations hidden in latest exchange", kind)
		}
	}
}

func TestVisibilitySystemError(t *testing.T) {
	e := newEntry(RoleSystem, "系統錯誤", "q1")
	e.ErrorKind = KindSystem

	got := ComputeVisibility(e, 0, []Entry{e}, revealedMap(e), map[string]bool{})
	if got != (Visibility{}) {
		t.Errorf("system error visibility = %+v, want zero", got)
	}
}

func TestVisibilityDefaultBranch(t *testing.T) {
	e := newEntry(RoleSystem, "答案", "q1")
	e.DeepLink = "app://card/overview"
	e.Recommendations = []Recommendation{{DisplayText: "追問"}}

	got := ComputeVisibility(e, 0, []Entry{e}, revealedMap(e), map[string]bool{})
	if !got.ShowFeedback || !got.ShowGoTo || !got.ShowRecommendations {
		t.Errorf("default visibility = %+v", got)
	}

	noLink := newEntry(RoleSystem, "答案", "q1")
	got = ComputeVisibility(noLink, 0, []Entry{noLink}, revealedMap(noLink), map[string]bool{})
	if got.ShowGoTo {
		t.Error("go-to shown without a deep link")
	}
}

func TestVisibilityWithFeedbackFalseRoundTrip(t *testing.T) {
	kinds := []ErrorKind{
		KindNone, KindSystem, KindTokenLimit, KindSensitiveData,
		KindKeyword, KindBusinessKeyword, KindTopicContent,
		KindStoreLimit, KindMultipleCategories, KindLowSimilarity,
	}
	for _, kind := range kinds {
		e := newEntry(RoleSystem, "文字", "q1")
		e.ErrorKind = kind
		e.WithFeedback = False

		got := ComputeVisibility(e, 0, []Entry{e}, revealedMap(e), map[string]bool{})
		if got.ShowFeedback {
			t.Errorf("withFeedback=False leaked feedback for kind %q", kind)
		}
	}
}

func TestVisibilityLatestExchangeWindow(t *testing.T) {
	u1 := newEntry(RoleUser, "第一題", "q1")
	s1 := newEntry(RoleSystem, "答一", "q1")
	s1.Recommendations = []Recommendation{{DisplayText: "追問一"}}
	u2 := newEntry(RoleUser, "第二題", "q2")
	s2 := newEntry(RoleSystem, "答二", "q2")
	s2.Recommendations = []Recommendation{{DisplayText: "追問二"}}

	transcript := []Entry{u1, s1, u2, s2}
	typing := revealedMap(u1, s1, u2, s2)

	// Older exchange: panel collapses.
	got := ComputeVisibility(s1, 1, transcript, typing, map[string]bool{})
	if got.ShowRecommendations {
		t.Error("recommendations shown on a stale exchange")
	}
	if !got.ShowFeedback {
		t.Error("feedback should survive outside the window")
	}

	// Latest exchange: panel shows.
	got = ComputeVisibility(s2, 3, transcript, typing, map[string]bool{})
	if !got.ShowRecommendations {
		t.Error("recommendations hidden on the latest exchange")
	}

	// A short transcript is always within the window.
	short := []Entry{u1, s1}
	got = ComputeVisibility(s1, 1, short, typing, map[string]bool{})
	if !got.ShowRecommendations {
		t.Error("recommendations hidden on a two-entry transcript")
	}
}

func TestVisibilityIsPure(t *testing.T) {
	e := newEntry(RoleSystem, "答案", "q1")
	e.Recommendations = []Recommendation{{DisplayText: "追問"}}
	transcript := []Entry{e}
	typing := revealedMap(e)
	cards := map[string]bool{}

	first := ComputeVisibility(e, 0, transcript, typing, cards)
	second := ComputeVisibility(e, 0, transcript, typing, cards)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("visibility not stable: %+v then %+v", first, second)
	}
}
