package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/codetutor/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithLogger(zerolog.Nop()), WithTimeout(5*time.Second)), srv
}

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestGenerateScaffoldingSendsRequest(t *testing.T) {
	var got map[string]any
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate_scaffolding", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, http.StatusOK, `{"scaffolding":"  print(1)\n","hints":["a","b"],"dependencies":null,"setup_instructions":"pip install"}`)
	})

	scaffold, err := client.GenerateScaffolding(context.Background(), ScaffoldingRequest{
		TaskDescription: "Print one",
		DifficultyLevel: model.DifficultyNewbie,
		Language:        model.LanguagePython,
		UseBoilerplate:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "print(1)", scaffold.Code)
	assert.Equal(t, []string{"a", "b"}, scaffold.Hints)
	assert.Empty(t, scaffold.Dependencies)
	assert.Equal(t, "pip install", scaffold.SetupInstructions)

	assert.Equal(t, "Print one", got["task_description"])
	assert.Equal(t, "newbie", got["difficulty_level"])
	assert.Equal(t, "python", got["language"])
	assert.Equal(t, true, got["use_boilerplate"])
	_, hasKeywords := got["concept_keywords"]
	assert.False(t, hasKeywords)
}

func TestGenerateScaffoldingObjectIsPrettyPrinted(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"scaffolding":{"main":"x"}}`)
	})
	scaffold, err := client.GenerateScaffolding(context.Background(), ScaffoldingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"main\": \"x\"\n}", scaffold.Code)
}

func TestGenerateScaffoldingMissingCode(t *testing.T) {
	for _, body := range []string{`{}`, `{"scaffolding":null}`, `{"scaffolding":""}`} {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			reply(w, http.StatusOK, body)
		})
		_, err := client.GenerateScaffolding(context.Background(), ScaffoldingRequest{})
		require.ErrorIs(t, err, ErrInvalidResponse, body)
		assert.Equal(t, "Invalid response format from server", Message(err))
	}
}

func TestRunCodeCoercesOutput(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{body: `{"output":"hello\n"}`, want: "hello\n"},
		{body: `{"output":["a","b"]}`, want: "a\nb"},
		{body: `{"output":{"stdout":"x"}}`, want: `{"stdout":"x"}`},
		{body: `{"output":""}`, want: ""},
	}
	for _, tc := range cases {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/run_code", r.URL.Path)
			reply(w, http.StatusOK, tc.body)
		})
		out, err := client.RunCode(context.Background(), RunRequest{Code: "x", Language: model.LanguageGo})
		require.NoError(t, err, tc.body)
		assert.Equal(t, tc.want, out, tc.body)
	}
}

func TestRunCodeMissingOutput(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"result":"x"}`)
	})
	_, err := client.RunCode(context.Background(), RunRequest{})
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestAnalyzeCode(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sum", req["task_description"])
		reply(w, http.StatusOK, `{"analysis":"Great job!"}`)
	})
	analysis, err := client.AnalyzeCode(context.Background(), AnalyzeRequest{Code: "x", Language: model.LanguageGo, TaskDescription: "sum"})
	require.NoError(t, err)
	assert.Equal(t, "Great job!", analysis)
}

func TestGenerateQuiz(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate_quiz", r.URL.Path)
		reply(w, http.StatusOK, `{
			"session_id": "abc",
			"questions": [
				{"id": "q1", "question": "What?", "options": ["A", "B"]},
				{"id": 2, "question": "Why?", "code_snippet": "x = 1", "options": ["C"]}
			]
		}`)
	})
	quiz, err := client.GenerateQuiz(context.Background(), QuizRequest{TaskDescription: "t", Language: model.LanguagePython})
	require.NoError(t, err)
	assert.Equal(t, "abc", quiz.SessionID)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "q1", quiz.Questions[0].ID)
	assert.Equal(t, []string{"A", "B"}, quiz.Questions[0].Options)
	assert.Equal(t, "2", quiz.Questions[1].ID)
	assert.Equal(t, "x = 1", quiz.Questions[1].CodeSnippet)
}

func TestGenerateQuizMissingFields(t *testing.T) {
	for _, body := range []string{
		`{"session_id":"abc"}`,
		`{"questions":[]}`,
		`{"session_id":"abc","questions":"nope"}`,
		`{"session_id":"abc","questions":[{"question":"no id"}]}`,
	} {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			reply(w, http.StatusOK, body)
		})
		_, err := client.GenerateQuiz(context.Background(), QuizRequest{})
		require.ErrorIs(t, err, ErrInvalidResponse, body)
	}
}

func TestCheckQuiz(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req CheckRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "abc", req.SessionID)
		assert.Equal(t, map[string]string{"q1": "A", "q2": "C"}, req.Answers)
		reply(w, http.StatusOK, `{
			"score": 5.0,
			"wrong_answers": [{"question": "Why?", "user_answer": "C", "correct_answer": "D"}],
			"correct_answers": ["What?"],
			"question_results": [{"id": "q1", "question": "What?", "user_answer": "A", "correct_answer": "A", "is_correct": true}],
			"percentage": 50
		}`)
	})
	result, err := client.CheckQuiz(context.Background(), CheckRequest{
		SessionID: "abc",
		Answers:   map[string]string{"q1": "A", "q2": "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Score)
	require.Len(t, result.WrongAnswers, 1)
	assert.Equal(t, "D", result.WrongAnswers[0].CorrectAnswer)
	assert.Equal(t, []string{"What?"}, result.CorrectAnswers)
	require.Len(t, result.QuestionResults, 1)
	assert.True(t, result.QuestionResults[0].IsCorrect)
}

func TestCheckQuizRejectsFractionalScore(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"score": 9.5, "wrong_answers": []}`)
	})
	_, err := client.CheckQuiz(context.Background(), CheckRequest{SessionID: "abc"})
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestCheckQuizLooseArrays(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"score": 10, "wrong_answers": null}`)
	})
	result, err := client.CheckQuiz(context.Background(), CheckRequest{SessionID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Score)
	assert.NotNil(t, result.WrongAnswers)
	assert.Empty(t, result.WrongAnswers)
	assert.NotNil(t, result.QuestionResults)
	assert.NotNil(t, result.CorrectAnswers)
}

func TestCheckQuizMissingScore(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"wrong_answers": []}`)
	})
	_, err := client.CheckQuiz(context.Background(), CheckRequest{SessionID: "abc"})
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGenerateLearning(t *testing.T) {
	var got map[string]json.RawMessage
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, http.StatusOK, `{"content": {
			"sections": [{"title": "Loops", "content": "Use for."}],
			"wrong_answers": [
				{"explanation": "Because.", "visual_explanation": {"type": "diagram", "content": "a -> b"}, "concept_keywords": ["loops"]},
				"plain text"
			],
			"concept_keywords": ["loops", " loops ", "range"]
		}}`)
	})
	content, err := client.GenerateLearning(context.Background(), LearningRequest{TaskDescription: "t", Language: model.LanguageGo})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got["wrong_answers"]))
	require.Len(t, content.Sections, 1)
	assert.Equal(t, "Loops", content.Sections[0].Title)
	require.Len(t, content.Explanations, 2)
	assert.Equal(t, "diagram", content.Explanations[0].Visual.Type)
	assert.Equal(t, "plain text", content.Explanations[1].Explanation)
	assert.Equal(t, []string{"loops", "range"}, content.ConceptKeywords)
}

func TestGenerateLearningRequiresContentObject(t *testing.T) {
	for _, body := range []string{`{}`, `{"content": null}`, `{"content": "text"}`} {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			reply(w, http.StatusOK, body)
		})
		_, err := client.GenerateLearning(context.Background(), LearningRequest{})
		require.ErrorIs(t, err, ErrInvalidResponse, body)
	}
}

func TestAPIErrorDetail(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{body: `{"detail":"Task description is required"}`, want: "Task description is required"},
		{body: `{"detail":[{"msg":"field required","loc":["body"]}]}`, want: "field required"},
		{body: `{"error":"x"}`, want: "Bad Request"},
		{body: `plain failure`, want: "plain failure"},
	}
	for _, tc := range cases {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			reply(w, http.StatusBadRequest, tc.body)
		})
		_, err := client.RunCode(context.Background(), RunRequest{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr, tc.body)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, EndpointRunCode, apiErr.Endpoint)
		assert.Equal(t, tc.want, Message(err), tc.body)
	}
}

func TestTimeoutDoesNotTouchCallerClient(t *testing.T) {
	custom := &http.Client{Timeout: time.Minute}

	before := New("http://localhost", WithTimeout(time.Second), WithHTTPClient(custom))
	after := New("http://localhost", WithHTTPClient(custom), WithTimeout(time.Second))

	assert.Equal(t, time.Minute, custom.Timeout)
	assert.Equal(t, time.Second, before.httpClient.Timeout)
	assert.Equal(t, time.Second, after.httpClient.Timeout)
	assert.NotSame(t, custom, after.httpClient)

	untouched := New("http://localhost", WithHTTPClient(custom))
	assert.Same(t, custom, untouched.httpClient)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Request timed out", Message(context.DeadlineExceeded))
	assert.Equal(t, "Request canceled", Message(context.Canceled))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestContextCancel(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	t.Cleanup(func() { close(release) })
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.AnalyzeCode(ctx, AnalyzeRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		reply(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	}))
	t.Cleanup(srv.Close)
	client := New(srv.URL, WithBreaker(model.BreakerConfig{Enabled: true, Failures: 2, Cooldown: time.Minute}))

	for i := 0; i < 2; i++ {
		_, err := client.RunCode(context.Background(), RunRequest{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "boom", apiErr.Detail)
	}

	_, err := client.RunCode(context.Background(), RunRequest{})
	require.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		reply(w, http.StatusUnprocessableEntity, `{"detail":"bad input"}`)
	}))
	t.Cleanup(srv.Close)
	client := New(srv.URL, WithBreaker(model.BreakerConfig{Enabled: true, Failures: 1, Cooldown: time.Minute}))

	for i := 0; i < 3; i++ {
		_, err := client.RunCode(context.Background(), RunRequest{})
		assert.Equal(t, "bad input", Message(err))
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestPing(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		reply(w, http.StatusOK, `{"message":"ok"}`)
	})
	require.NoError(t, client.Ping(context.Background()))
}
