package opentdb

// Question is a single trivia question. The API ships every text field
// base64-encoded when encode=base64 is requested; DecodeQuestion turns
// the wire form into plain text. Both forms share this shape.
type Question struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`       // "multiple" or "boolean"
	Difficulty       string   `json:"difficulty"` // "easy", "medium" or "hard"
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// QuestionsResponse is the envelope of the questions endpoint
type QuestionsResponse struct {
	ResponseCode int        `json:"response_code"`
	Results      []Question `json:"results"`
}

// CategoryInfo is one entry of the remote category list
type CategoryInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CategoriesResponse is the envelope of the categories endpoint
type CategoriesResponse struct {
	TriviaCategories []CategoryInfo `json:"trivia_categories"`
}

// QuestionCount holds the remote-reported question tallies for a category
type QuestionCount struct {
	Total  int `json:"total_question_count"`
	Easy   int `json:"total_easy_question_count"`
	Medium int `json:"total_medium_question_count"`
	Hard   int `json:"total_hard_question_count"`
}

// CountResponse is the envelope of the count endpoint
type CountResponse struct {
	CategoryID            int           `json:"category_id"`
	CategoryQuestionCount QuestionCount `json:"category_question_count"`
}

// TokenResponse is the envelope of the token endpoint
type TokenResponse struct {
	ResponseCode int    `json:"response_code"`
	Token        string `json:"token"`
}
