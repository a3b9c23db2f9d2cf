// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sensitive

import "testing"

func TestContainsSensitiveData(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", false},
		{"plain question", "我上個月餐飲花了多少錢？", false},
		{"amount with few digits", "上個月花超過 5000 元的有哪些？", false},

		{"national id", "A123456789", true},
		{"national id with separators", "A 1 2 3-4 5 6.7 8 9", true},
		{"national id embedded", "我的身分證是A123456789可以查嗎", true},

		{"credit card 16 digits", "4111 1111 1111 1111", true},
		{"account 12 digits", "123456789012", true},
		{"eleven digits only", "12345678901", false},

		{"mobile number", "0912345678", true},
		{"mobile full width", "０９１２３４５６７８", true},
		{"mobile embedded not anchored", "請打0912345678找我", false},

		{"passport", "AB1234567", true},

		{"email", "user@example.com", true},
		{"email embedded not anchored", "寄到 user@example.com 謝謝", false},

		{"landline taipei", "(02)27123456", true},
		{"landline no parens", "02-27123456", true},

		{"ipv4", "192.168.0.1", true},
		{"ipv4 out of range", "999.168.0.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsSensitiveData(tt.input); got != tt.want {
				t.Errorf("ContainsSensitiveData(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
