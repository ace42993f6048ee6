package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "key" or "type").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "unknown_field":
			return "未知のフィールドです"
		case "unknown_variant":
			return "未知のバリアントです"
		case "union_tag":
			return "バリアントタグはちょうど1つ必要です"
		case "arity_mismatch":
			return "配列の要素数が一致しません"
		case "missing_value":
			return "値が指定されていません"
		case "overflow":
			return "数値が表現範囲を超えています"
		case "cycle":
			return "型が自己参照しています"
		case "parse_error":
			return "解析エラー"
		case "resolver_failure":
			return "動的値の解決に失敗しました"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "unknown_field":
			return "unknown field"
		case "unknown_variant":
			return "unknown variant"
		case "union_tag":
			return "exactly one variant tag required"
		case "arity_mismatch":
			return "array length mismatch"
		case "missing_value":
			return "missing value"
		case "overflow":
			return "numeric overflow"
		case "cycle":
			return "self-referential type"
		case "parse_error":
			return "parse error"
		case "resolver_failure":
			return "dynamic value resolution failed"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
