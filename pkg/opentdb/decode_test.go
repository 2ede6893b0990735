package opentdb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "triviafetch/pkg/errors"
)

func encodedQuestion() Question {
	return Question{
		Category:      b64("General Knowledge"),
		Type:          b64("multiple"),
		Difficulty:    b64("medium"),
		Question:      b64("What does \"HTML\" stand for?"),
		CorrectAnswer: b64("Hypertext Markup Language"),
		IncorrectAnswers: []string{
			b64("Hypertext Markdown Language"),
			b64("Hyperloop Machine Language"),
			b64("Helicopters Terminate Landing"),
		},
	}
}

func TestDecodeQuestion(t *testing.T) {
	decoded, err := DecodeQuestion(encodedQuestion())
	require.NoError(t, err)

	assert.Equal(t, "General Knowledge", decoded.Category)
	assert.Equal(t, "multiple", decoded.Type)
	assert.Equal(t, "medium", decoded.Difficulty)
	assert.Equal(t, "What does \"HTML\" stand for?", decoded.Question)
	assert.Equal(t, "Hypertext Markup Language", decoded.CorrectAnswer)
	require.Len(t, decoded.IncorrectAnswers, 3)
	assert.Equal(t, "Hypertext Markdown Language", decoded.IncorrectAnswers[0])
}

func TestDecodeQuestionPreservesUnicode(t *testing.T) {
	raw := encodedQuestion()
	raw.Question = b64("Vilken stad är Sveriges huvudstad?")
	raw.CorrectAnswer = b64("Stockholm")

	decoded, err := DecodeQuestion(raw)
	require.NoError(t, err)
	assert.Equal(t, "Vilken stad är Sveriges huvudstad?", decoded.Question)
}

func TestDecodeQuestionRejectsBadBase64(t *testing.T) {
	raw := encodedQuestion()
	raw.Question = "not!!valid%%base64"

	_, err := DecodeQuestion(raw)
	require.Error(t, err)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeParsing, apiErr.Type)
}

func TestDecodeQuestionRejectsBadIncorrectAnswer(t *testing.T) {
	raw := encodedQuestion()
	raw.IncorrectAnswers[1] = "%%%"

	_, err := DecodeQuestion(raw)
	require.Error(t, err)
}

func TestDecodeQuestionRejectsInvalidUTF8(t *testing.T) {
	raw := encodedQuestion()
	// 0xFF 0xFE is not valid UTF-8
	raw.Question = "//4="

	_, err := DecodeQuestion(raw)
	require.Error(t, err)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeParsing, apiErr.Type)
}
