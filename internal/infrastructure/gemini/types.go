package gemini

// Wire types for models/{model}:generateContent. Response fields are pointers
// so that any absent or null level can be detected.

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []*candidate `json:"candidates"`
	Error      *errorBody   `json:"error"`
}

type candidate struct {
	Content *responseContent `json:"content"`
}

type responseContent struct {
	Parts []*responsePart `json:"parts"`
}

type responsePart struct {
	Text *string `json:"text"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// firstText candidates[0].content.parts[0].text
func (r *generateResponse) firstText() (string, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return "", false
	}
	c := r.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
		return "", false
	}
	p := c.Content.Parts[0]
	if p == nil || p.Text == nil || *p.Text == "" {
		return "", false
	}
	return *p.Text, true
}
