package opentdb

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	errs "triviafetch/pkg/errors"
)

// DecodeQuestion decodes every base64-encoded field of a wire question
// into plain UTF-8 text. A failure in any field fails the whole question;
// callers skip the item and keep the batch.
func DecodeQuestion(raw Question) (Question, error) {
	decoded := Question{
		IncorrectAnswers: make([]string, 0, len(raw.IncorrectAnswers)),
	}

	fields := []struct {
		name  string
		value string
		dst   *string
	}{
		{"category", raw.Category, &decoded.Category},
		{"type", raw.Type, &decoded.Type},
		{"difficulty", raw.Difficulty, &decoded.Difficulty},
		{"question", raw.Question, &decoded.Question},
		{"correct_answer", raw.CorrectAnswer, &decoded.CorrectAnswer},
	}

	for _, f := range fields {
		text, err := decodeField(f.name, f.value)
		if err != nil {
			return Question{}, err
		}
		*f.dst = text
	}

	for i, enc := range raw.IncorrectAnswers {
		text, err := decodeField(fmt.Sprintf("incorrect_answers[%d]", i), enc)
		if err != nil {
			return Question{}, err
		}
		decoded.IncorrectAnswers = append(decoded.IncorrectAnswers, text)
	}

	return decoded, nil
}

// decodeField decodes one base64 value and validates it is UTF-8
func decodeField(name, value string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", errs.New(errs.ErrorTypeParsing, 0,
			"failed to decode field %s: %v", name, err)
	}
	if !utf8.Valid(data) {
		return "", errs.New(errs.ErrorTypeParsing, 0,
			"field %s is not valid UTF-8 after decoding", name)
	}
	return string(data), nil
}
