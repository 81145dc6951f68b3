package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"math"

	"github.com/verte-zerg/codetutor/internal/model"
	"github.com/verte-zerg/codetutor/internal/normalize"
)

// ScaffoldingRequest asks for starter code.
type ScaffoldingRequest struct {
	TaskDescription string           `json:"task_description"`
	DifficultyLevel model.Difficulty `json:"difficulty_level"`
	Language        model.Language   `json:"language"`
	UseBoilerplate  bool             `json:"use_boilerplate"`
	ConceptKeywords []string         `json:"concept_keywords,omitempty"`
}

// RunRequest executes code remotely.
type RunRequest struct {
	Code     string         `json:"code"`
	Language model.Language `json:"language"`
}

// AnalyzeRequest asks for feedback on code.
type AnalyzeRequest struct {
	Code            string         `json:"code"`
	Language        model.Language `json:"language"`
	TaskDescription string         `json:"task_description"`
}

// QuizRequest asks for a quiz on a task.
type QuizRequest struct {
	TaskDescription string         `json:"task_description"`
	Language        model.Language `json:"language"`
}

// Quiz is a generated quiz and the token that correlates its grading.
type Quiz struct {
	SessionID string
	Questions []model.Question
}

// CheckRequest submits answers. The session id is the sole correlation key.
type CheckRequest struct {
	SessionID string            `json:"session_id"`
	Answers   map[string]string `json:"answers"`
}

// LearningRequest asks for personalized content.
type LearningRequest struct {
	TaskDescription string              `json:"task_description"`
	Language        model.Language      `json:"language"`
	WrongAnswers    []model.WrongAnswer `json:"wrong_answers"`
}

// GenerateScaffolding returns starter code, hints and setup notes.
func (c *Client) GenerateScaffolding(ctx context.Context, req ScaffoldingRequest) (model.Scaffolding, error) {
	data, err := c.post(ctx, EndpointScaffolding, req)
	if err != nil {
		return model.Scaffolding{}, err
	}
	var resp struct {
		Scaffolding       json.RawMessage `json:"scaffolding"`
		Hints             json.RawMessage `json:"hints"`
		Dependencies      json.RawMessage `json:"dependencies"`
		SetupInstructions json.RawMessage `json:"setup_instructions"`
	}
	if err := decode(EndpointScaffolding, data, &resp); err != nil {
		return model.Scaffolding{}, err
	}
	if isEmpty(resp.Scaffolding) {
		return model.Scaffolding{}, invalidResponse(EndpointScaffolding, "scaffolding")
	}
	return model.Scaffolding{
		Code:              normalize.Code(resp.Scaffolding),
		Hints:             normalize.Strings(resp.Hints),
		Dependencies:      normalize.Strings(resp.Dependencies),
		SetupInstructions: normalize.Text(resp.SetupInstructions, true),
	}, nil
}

// RunCode executes code and returns its output.
func (c *Client) RunCode(ctx context.Context, req RunRequest) (string, error) {
	data, err := c.post(ctx, EndpointRunCode, req)
	if err != nil {
		return "", err
	}
	var resp struct {
		Output json.RawMessage `json:"output"`
	}
	if err := decode(EndpointRunCode, data, &resp); err != nil {
		return "", err
	}
	if resp.Output == nil {
		return "", invalidResponse(EndpointRunCode, "output")
	}
	return normalize.Text(resp.Output, false), nil
}

// AnalyzeCode returns review text for code.
func (c *Client) AnalyzeCode(ctx context.Context, req AnalyzeRequest) (string, error) {
	data, err := c.post(ctx, EndpointAnalyzeCode, req)
	if err != nil {
		return "", err
	}
	var resp struct {
		Analysis json.RawMessage `json:"analysis"`
	}
	if err := decode(EndpointAnalyzeCode, data, &resp); err != nil {
		return "", err
	}
	if isEmpty(resp.Analysis) {
		return "", invalidResponse(EndpointAnalyzeCode, "analysis")
	}
	return normalize.Text(resp.Analysis, false), nil
}

// GenerateQuiz returns questions and the grading session id.
func (c *Client) GenerateQuiz(ctx context.Context, req QuizRequest) (Quiz, error) {
	data, err := c.post(ctx, EndpointQuiz, req)
	if err != nil {
		return Quiz{}, err
	}
	var resp struct {
		Questions json.RawMessage `json:"questions"`
		SessionID json.RawMessage `json:"session_id"`
	}
	if err := decode(EndpointQuiz, data, &resp); err != nil {
		return Quiz{}, err
	}
	if !normalize.IsArray(resp.Questions) {
		return Quiz{}, invalidResponse(EndpointQuiz, "questions")
	}
	sessionID := normalize.Text(resp.SessionID, false)
	if sessionID == "" {
		return Quiz{}, invalidResponse(EndpointQuiz, "session_id")
	}
	var items []struct {
		ID          json.RawMessage `json:"id"`
		Question    json.RawMessage `json:"question"`
		CodeSnippet json.RawMessage `json:"code_snippet"`
		Options     json.RawMessage `json:"options"`
	}
	if err := decode(EndpointQuiz, resp.Questions, &items); err != nil {
		return Quiz{}, err
	}
	questions := make([]model.Question, 0, len(items))
	for _, item := range items {
		q := model.Question{
			ID:          normalize.Text(item.ID, false),
			Question:    normalize.Text(item.Question, false),
			CodeSnippet: normalize.Text(item.CodeSnippet, true),
			Options:     normalize.Strings(item.Options),
		}
		if q.ID == "" {
			return Quiz{}, invalidResponse(EndpointQuiz, "questions[].id")
		}
		questions = append(questions, q)
	}
	return Quiz{SessionID: sessionID, Questions: questions}, nil
}

// CheckQuiz grades the answers recorded against a session id.
func (c *Client) CheckQuiz(ctx context.Context, req CheckRequest) (model.GradingResult, error) {
	data, err := c.post(ctx, EndpointCheckQuiz, req)
	if err != nil {
		return model.GradingResult{}, err
	}
	var resp struct {
		Score           *float64        `json:"score"`
		WrongAnswers    json.RawMessage `json:"wrong_answers"`
		QuestionResults json.RawMessage `json:"question_results"`
		CorrectAnswers  json.RawMessage `json:"correct_answers"`
	}
	if err := decode(EndpointCheckQuiz, data, &resp); err != nil {
		return model.GradingResult{}, err
	}
	if resp.Score == nil || *resp.Score != math.Trunc(*resp.Score) {
		return model.GradingResult{}, invalidResponse(EndpointCheckQuiz, "score")
	}
	result := model.GradingResult{
		Score:           int(*resp.Score),
		WrongAnswers:    []model.WrongAnswer{},
		QuestionResults: []model.QuestionResult{},
		CorrectAnswers:  normalize.Strings(resp.CorrectAnswers),
	}
	if normalize.IsArray(resp.WrongAnswers) {
		var wrong []model.WrongAnswer
		if err := json.Unmarshal(resp.WrongAnswers, &wrong); err == nil {
			result.WrongAnswers = wrong
		}
	}
	if normalize.IsArray(resp.QuestionResults) {
		var results []model.QuestionResult
		if err := json.Unmarshal(resp.QuestionResults, &results); err == nil {
			result.QuestionResults = results
		}
	}
	return result, nil
}

// GenerateLearning returns learning content tailored to the wrong answers.
func (c *Client) GenerateLearning(ctx context.Context, req LearningRequest) (model.LearningContent, error) {
	if req.WrongAnswers == nil {
		req.WrongAnswers = []model.WrongAnswer{}
	}
	data, err := c.post(ctx, EndpointLearning, req)
	if err != nil {
		return model.LearningContent{}, err
	}
	var resp struct {
		Content json.RawMessage `json:"content"`
	}
	if err := decode(EndpointLearning, data, &resp); err != nil {
		return model.LearningContent{}, err
	}
	content := bytes.TrimSpace(resp.Content)
	if len(content) == 0 || content[0] != '{' {
		return model.LearningContent{}, invalidResponse(EndpointLearning, "content")
	}
	var fields struct {
		Sections        json.RawMessage `json:"sections"`
		WrongAnswers    json.RawMessage `json:"wrong_answers"`
		ConceptKeywords json.RawMessage `json:"concept_keywords"`
	}
	if err := decode(EndpointLearning, content, &fields); err != nil {
		return model.LearningContent{}, err
	}
	return model.LearningContent{
		Sections:        normalize.Sections(fields.Sections),
		Explanations:    normalize.Explanations(fields.WrongAnswers),
		ConceptKeywords: normalize.Keywords(fields.ConceptKeywords),
	}, nil
}

func isEmpty(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null" || string(raw) == `""`
}
