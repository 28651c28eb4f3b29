package i18n

import (
	"woodify/internal/domain/model"

	"golang.org/x/text/language"
)

// Store は言語ごとのUI文字列
type Store struct {
	tables  map[model.Language]map[string]string
	langs   []model.Language
	matcher language.Matcher
}

func NewStore() *Store {
	tags := make([]language.Tag, 0, len(model.SupportedLanguages))
	for _, l := range model.SupportedLanguages {
		tags = append(tags, language.Make(string(l)))
	}
	return &Store{
		tables:  tables,
		langs:   model.SupportedLanguages,
		matcher: language.NewMatcher(tags),
	}
}

// T は 指定言語 → 英語 → キーそのもの の順で返す
func (s *Store) T(lang model.Language, key string) string {
	if v, ok := s.tables[lang][key]; ok {
		return v
	}
	if v, ok := s.tables[model.LangEN][key]; ok {
		return v
	}
	return key
}

// Table は呼び出し側で書き換えられるようコピーを返す
func (s *Store) Table(lang model.Language) map[string]string {
	src, ok := s.tables[lang]
	if !ok {
		src = s.tables[model.LangEN]
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Match は Accept-Language から対応言語を選ぶ
func (s *Store) Match(acceptLanguage string) model.Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return model.LangEN
	}
	_, idx, conf := s.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(s.langs) {
		return model.LangEN
	}
	return s.langs[idx]
}

// TimelineLabel は納期の表示名
func (s *Store) TimelineLabel(lang model.Language, t model.Timeline) string {
	return s.T(lang, t.LabelKey())
}
