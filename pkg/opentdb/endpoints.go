package opentdb

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the base URL for the OpenTDB API
	BaseURL = "https://opentdb.com"

	// QuestionsEndpoint serves paginated question batches
	QuestionsEndpoint = "/api.php"

	// CategoriesEndpoint serves the category list
	CategoriesEndpoint = "/api_category.php"

	// CountEndpoint serves per-category question counts
	CountEndpoint = "/api_count.php"

	// TokenEndpoint serves session token request/reset commands
	TokenEndpoint = "/api_token.php"

	// MaxQuestionsPerRequest is the API's page size ceiling
	MaxQuestionsPerRequest = 50
)

// Remote response codes. These are the API's own status enumeration,
// distinct from HTTP status.
const (
	CodeSuccess          = 0
	CodeNoResults        = 1
	CodeInvalidParameter = 2
	CodeTokenNotFound    = 3
	CodeTokenEmpty       = 4
	CodeRateLimited      = 5

	// CodeUnknown is a local sentinel for transport or parse failures
	// where no remote code was obtained. It is never sent by the API.
	CodeUnknown = -1
)

// ResponseCodeText returns a human-readable name for a remote response code
func ResponseCodeText(code int) string {
	switch code {
	case CodeSuccess:
		return "Success"
	case CodeNoResults:
		return "No Results"
	case CodeInvalidParameter:
		return "Invalid Parameter"
	case CodeTokenNotFound:
		return "Token Not Found"
	case CodeTokenEmpty:
		return "Token Empty"
	case CodeRateLimited:
		return "Rate Limited"
	case CodeUnknown:
		return "Unknown (no response)"
	default:
		return fmt.Sprintf("Unknown code %d", code)
	}
}

// QuestionsQuery holds the parameters for a question batch request
type QuestionsQuery struct {
	Amount     int
	CategoryID int
	Token      string
	Difficulty string // optional: easy, medium, hard
}

// QuestionsURL constructs the URL for fetching a batch of questions.
// Text fields are requested base64-encoded to survive control characters
// and HTML entities intact.
func QuestionsURL(baseURL string, q QuestionsQuery) string {
	amount := q.Amount
	if amount <= 0 || amount > MaxQuestionsPerRequest {
		amount = MaxQuestionsPerRequest
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	params.Set("category", strconv.Itoa(q.CategoryID))
	params.Set("encode", "base64")
	if q.Token != "" {
		params.Set("token", q.Token)
	}
	if q.Difficulty != "" {
		params.Set("difficulty", q.Difficulty)
	}

	return fmt.Sprintf("%s%s?%s", baseURL, QuestionsEndpoint, params.Encode())
}

// CategoriesURL constructs the URL for fetching the category list
func CategoriesURL(baseURL string) string {
	return baseURL + CategoriesEndpoint
}

// CountURL constructs the URL for fetching a category's question counts
func CountURL(baseURL string, categoryID int) string {
	params := url.Values{}
	params.Set("category", strconv.Itoa(categoryID))
	return fmt.Sprintf("%s%s?%s", baseURL, CountEndpoint, params.Encode())
}

// TokenRequestURL constructs the URL for requesting a new session token
func TokenRequestURL(baseURL string) string {
	params := url.Values{}
	params.Set("command", "request")
	return fmt.Sprintf("%s%s?%s", baseURL, TokenEndpoint, params.Encode())
}

// TokenResetURL constructs the URL for resetting a session token
func TokenResetURL(baseURL, token string) string {
	params := url.Values{}
	params.Set("command", "reset")
	params.Set("token", token)
	return fmt.Sprintf("%s%s?%s", baseURL, TokenEndpoint, params.Encode())
}
