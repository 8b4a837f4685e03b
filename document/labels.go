package document

import (
	"fmt"

	"golang.org/x/text/language"
)

// Labels holds the fixed strings used by [Renderer]: headings, field
// prefixes and the placeholders substituted for missing values.
type Labels struct {
	File        string
	Class       string
	Method      string
	Function    string
	Description string
	Parameters  string
	Returns     string
	ReturnType  string
	Notes       string
	// CallGraph is the alt text of call graph image links.
	CallGraph string

	// NoDescription replaces an empty entity or parameter description.
	NoDescription string
	// NoType replaces a missing parameter type.
	NoType string
}

// English labels. They are the default.
var English = Labels{
	File:          "File",
	Class:         "Class",
	Method:        "Method",
	Function:      "Function",
	Description:   "Description",
	Parameters:    "Parameters",
	Returns:       "Returns",
	ReturnType:    "Return type",
	Notes:         "Notes",
	CallGraph:     "Call graph",
	NoDescription: "Not specified",
	NoType:        "not specified",
}

// Russian labels.
var Russian = Labels{
	File:          "Файл",
	Class:         "Класс",
	Method:        "Метод",
	Function:      "Функция",
	Description:   "Описание",
	Parameters:    "Параметры",
	Returns:       "Возвращает",
	ReturnType:    "Тип возвращаемого объекта",
	Notes:         "Замечания",
	CallGraph:     "Граф вызовов",
	NoDescription: "Не указано",
	NoType:        "Нет описания",
}

var (
	supportedLocales = []language.Tag{language.English, language.Russian}
	localeLabels     = []Labels{English, Russian}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

// Locales returns the BCP 47 tags that have built-in labels.
func Locales() []string {
	names := make([]string, 0, len(supportedLocales))
	for _, tag := range supportedLocales {
		names = append(names, tag.String())
	}

	return names
}

// LabelsFor returns the built-in labels best matching locale, a BCP 47 tag
// such as "en", "ru" or "ru-RU". An empty locale selects [English]. Locales
// without a confident match fall back to [English].
func LabelsFor(locale string) (Labels, error) {
	if locale == "" {
		return English, nil
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return Labels{}, fmt.Errorf("%w: %q: %w", ErrUnknownLocale, locale, err)
	}

	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return English, nil
	}

	return localeLabels[idx], nil
}
