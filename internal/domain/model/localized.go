package model

import "strings"

// 対応言語
type Language string

const (
	LangEN Language = "en"
	LangTR Language = "tr"
)

// SupportedLanguages は表示順
var SupportedLanguages = []Language{LangEN, LangTR}

// ParseLanguage は "tr-TR" なども受ける。未対応は英語
func ParseLanguage(s string) Language {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	for _, l := range SupportedLanguages {
		if string(l) == s {
			return l
		}
	}
	return LangEN
}

// 言語ごとの文字列。name_en / name_tr のような動的キーの代わり
type LocalizedText map[Language]string

// Get は 指定言語 → 英語 → legacy の順で空でない値を返す
func (t LocalizedText) Get(lang Language, legacy string) string {
	if v := strings.TrimSpace(t[lang]); v != "" {
		return v
	}
	if v := strings.TrimSpace(t[LangEN]); v != "" {
		return v
	}
	return strings.TrimSpace(legacy)
}

// Has は指定言語の値が空でないか
func (t LocalizedText) Has(lang Language) bool {
	return strings.TrimSpace(t[lang]) != ""
}

// Any はどれか1言語でも入っているか
func (t LocalizedText) Any() bool {
	for _, v := range t {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Trimmed は前後空白を落とし、空の言語を除いたコピー
func (t LocalizedText) Trimmed() LocalizedText {
	out := LocalizedText{}
	for k, v := range t {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}
