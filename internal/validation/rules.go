package validation

import "strconv"

// Comment body minimums per entry point. The JSON API accepts shorter
// comments than the HTML form and the JSON edit endpoint.
const (
	MinCommentAPI  = 3
	MinCommentForm = 10
	MaxComment     = 1000
)

// MaxPasswordBytes is the longest password bcrypt can hash
const MaxPasswordBytes = 72

// Rule set names
const (
	RuleSetPost        = "post"
	RuleSetCommentAPI  = "comment_api"
	RuleSetCommentForm = "comment_form"
	RuleSetRegister    = "register"
	RuleSetLogin       = "login"
)

// PostRules validates post create and update payloads
func PostRules() RuleSet {
	return RuleSet{
		Name: RuleSetPost,
		Fields: []Field{
			{Name: "title", Required: true, Tags: []string{"max=255"}},
			{Name: "content", Required: true, Tags: []string{"min=10"}},
		},
	}
}

// CommentAPIRules validates comments created through the JSON API
func CommentAPIRules() RuleSet {
	return commentRules(RuleSetCommentAPI, MinCommentAPI)
}

// CommentFormRules validates comments posted from the HTML form and comment
// edits through the JSON API
func CommentFormRules() RuleSet {
	return commentRules(RuleSetCommentForm, MinCommentForm)
}

func commentRules(name string, minLen int) RuleSet {
	return RuleSet{
		Name: name,
		Fields: []Field{
			{
				Name:     "comment",
				Required: true,
				Tags:     []string{"min=" + strconv.Itoa(minLen), "max=" + strconv.Itoa(MaxComment)},
				Messages: map[string]string{
					"required": "The comment is required.",
					"string":   "The comment must be a string.",
					"min":      "The comment must be at least :param characters.",
					"max":      "The comment may not be greater than :param characters.",
				},
			},
		},
	}
}

// RegisterRules validates account registration. emailTaken backs the
// uniqueness check and may be nil to skip it.
func RegisterRules(emailTaken UniqueFunc) RuleSet {
	return RuleSet{
		Name: RuleSetRegister,
		Fields: []Field{
			{Name: "name", Required: true, Tags: []string{"max=255"}},
			{Name: "email", Required: true, Lower: true, Tags: []string{"email", "max=255"}, Unique: emailTaken},
			{Name: "password", Required: true, Raw: true, Tags: []string{"min=8", "maxbytes=" + strconv.Itoa(MaxPasswordBytes)}, Confirmed: true},
		},
	}
}

// LoginRules validates the shape of a login request. Whether the pair
// matches a stored account is decided by the auth service.
func LoginRules() RuleSet {
	return RuleSet{
		Name: RuleSetLogin,
		Fields: []Field{
			{Name: "email", Required: true, Lower: true, Tags: []string{"email"}},
			{Name: "password", Required: true, Raw: true},
		},
	}
}
