package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerTR(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"İSTANBUL", "istanbul"},
		{"IĞDIR", "ığdır"},
		{"SÖZLEŞMELİ PERSONEL", "sözleşmeli personel"},
		{"tablo1", "tablo1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LowerTR(tt.in))
		})
	}
}

func TestUpperTR(t *testing.T) {
	assert.Equal(t, "İZMİR", UpperTR("izmir"))
	assert.Equal(t, "ISPARTA", UpperTR("ısparta"))
}

func TestFoldASCII(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ÖNLİSANS_NİTELİK.pdf", "onlisans_nitelik.pdf"},
		{"Özel_Koşullar", "ozel_kosullar"},
		{"ORTAÖĞRETİM", "ortaogretim"},
		{"ÇANKIRI", "cankiri"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldASCII(tt.in))
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \t\n b  c  "))
	assert.Equal(t, "", CollapseSpaces(" \n "))
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("123"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12a"))
	assert.False(t, IsDigits("١٢"))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", Snippet("short", 10))
	assert.Equal(t, "abc…", Snippet("abc   defgh", 4))
	assert.Equal(t, "ğüş…", Snippet("ğüşiöç", 3))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ÇAN", TruncateRunes("ÇANKIRI", 3))
	assert.Equal(t, "VAN", TruncateRunes("VAN", 10))
}
