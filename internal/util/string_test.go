// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"testing"
)

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"ascii cut", "hello world", 8, "hello w…"},
		{"cjk fits", "消費分析", 8, "消費分析"},
		{"cjk cut", "信用卡消費分析服務", 8, "信用卡…"},
		{"zero", "hello", 0, ""},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWidth(tt.input, tt.maxWidth)
			if got != tt.want {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
			if DisplayWidth(got) > tt.maxWidth {
				t.Errorf("result %q exceeds width %d", got, tt.maxWidth)
			}
		})
	}
}

func TestWrapWidth(t *testing.T) {
	lines := WrapWidth("您好，想了解什麼資訊嗎？", 8)
	for _, line := range lines {
		if DisplayWidth(line) > 8 {
			t.Errorf("line %q exceeds width 8", line)
		}
	}
	if strings.Join(lines, "") != "您好，想了解什麼資訊嗎？" {
		t.Errorf("wrapping lost characters: %v", lines)
	}

	multi := WrapWidth("第一行\n第二行", 20)
	if len(multi) != 2 {
		t.Errorf("existing breaks not preserved: %v", multi)
	}
}

func TestPadWidth(t *testing.T) {
	if got := PadWidth("ab", 5); got != "ab   " {
		t.Errorf("PadWidth = %q", got)
	}
	if got := PadWidth("消費", 6); DisplayWidth(got) != 6 {
		t.Errorf("cjk pad width = %d", DisplayWidth(got))
	}
	if got := PadWidth("too wide here", 5); DisplayWidth(got) > 5 {
		t.Errorf("over-wide not truncated: %q", got)
	}
}
