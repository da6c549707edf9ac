package simd

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemchr(t *testing.T) {
	long := strings.Repeat("x", 200)
	tests := []struct {
		name     string
		haystack string
		needle   byte
	}{
		{name: "empty", haystack: "", needle: 'a'},
		{name: "short hit", haystack: "hello", needle: 'l'},
		{name: "short miss", haystack: "hello", needle: 'z'},
		{name: "word boundary", haystack: "abcdefgh" + "ijklmnop", needle: 'i'},
		{name: "tail", haystack: "abcdefghij", needle: 'j'},
		{name: "long hit late", haystack: long + "y" + long, needle: 'y'},
		{name: "long hit in third word", haystack: long[:19] + "y" + long, needle: 'y'},
		{name: "long miss", haystack: long, needle: 'y'},
		{name: "high byte", haystack: long + "\xff", needle: 0xff},
		{name: "zero byte", haystack: long + "\x00", needle: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := strings.IndexByte(tt.haystack, tt.needle)
			if got := Memchr([]byte(tt.haystack), tt.needle); got != want {
				t.Errorf("Memchr() = %d, want %d", got, want)
			}
			if got := memchrSWAR([]byte(tt.haystack), tt.needle, 0); got != want {
				t.Errorf("memchrSWAR() = %d, want %d", got, want)
			}
			if len(tt.haystack) > 0 {
				if got := memchrWide([]byte(tt.haystack), tt.needle); got != want {
					t.Errorf("memchrWide() = %d, want %d", got, want)
				}
			}
		})
	}
}

func TestMemchrEveryPosition(t *testing.T) {
	for n := 1; n < 100; n++ {
		for pos := 0; pos < n; pos++ {
			h := bytes.Repeat([]byte{'.'}, n)
			h[pos] = '#'
			if got := Memchr(h, '#'); got != pos {
				t.Fatalf("Memchr(len=%d, pos=%d) = %d", n, pos, got)
			}
			if got := memchrWide(h, '#'); got != pos {
				t.Fatalf("memchrWide(len=%d, pos=%d) = %d", n, pos, got)
			}
		}
	}
}

func TestMemmem(t *testing.T) {
	tests := []struct {
		haystack, needle string
	}{
		{"hello world", "world"},
		{"hello world", "xyz"},
		{"aaaaaabaaaa", "aab"},
		{"", "a"},
		{"abc", ""},
		{"ab", "abc"},
		{"needle", "needle"},
		{strings.Repeat("ab", 100) + "abc", "abc"},
		{"xbxbxab", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.haystack+"/"+tt.needle, func(t *testing.T) {
			want := strings.Index(tt.haystack, tt.needle)
			if got := Memmem([]byte(tt.haystack), []byte(tt.needle)); got != want {
				t.Errorf("Memmem() = %d, want %d", got, want)
			}
		})
	}
}

func TestMemchrTable(t *testing.T) {
	var digits [256]bool
	for c := '0'; c <= '9'; c++ {
		digits[c] = true
	}

	tests := []struct {
		name     string
		haystack string
		in, out  int
	}{
		{name: "empty", haystack: "", in: -1, out: -1},
		{name: "all digits", haystack: "0123456789012345678", in: 0, out: -1},
		{name: "digits then letter", haystack: "0123456789012x", in: 0, out: 13},
		{name: "letters then digit", haystack: "abcdefghijklmnop7", in: 16, out: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MemchrInTable([]byte(tt.haystack), &digits); got != tt.in {
				t.Errorf("MemchrInTable() = %d, want %d", got, tt.in)
			}
			if got := MemchrNotInTable([]byte(tt.haystack), &digits); got != tt.out {
				t.Errorf("MemchrNotInTable() = %d, want %d", got, tt.out)
			}
		})
	}

	if got := MemchrNotInTable([]byte("abc"), nil); got != -1 {
		t.Errorf("MemchrNotInTable(nil table) = %d, want -1", got)
	}
}
