package gatewaysvc

import (
	"context"
	"net/http"

	"github.com/trezcool/ratiba/core"
)

// GenerateSchedule submits candidate course stubs and returns the generated
// schedule, semester code to courses with scraped professor candidates.
func (gw *HTTPGateway) GenerateSchedule(ctx context.Context, stubs []core.CourseStub) (core.GeneratedSchedule, error) {
	payload := struct {
		Courses []core.CourseStub `json:"courses"`
	}{Courses: stubs}

	var out struct {
		Schedule core.GeneratedSchedule `json:"schedule"`
	}
	if err := gw.do(ctx, http.MethodPost, "/generate-schedule", payload, &out, true); err != nil {
		return nil, err
	}
	return out.Schedule, nil
}

// AgentRecommendations asks the AI agent to rank instructors for the given
// courses against the student's preference tags.
func (gw *HTTPGateway) AgentRecommendations(ctx context.Context, tags []string, queries []core.CourseQuery) (core.AgentAdvice, error) {
	payload := struct {
		Preferences []string           `json:"preferences"`
		Courses     []core.CourseQuery `json:"courses"`
	}{Preferences: tags, Courses: queries}

	var advice core.AgentAdvice
	if err := gw.do(ctx, http.MethodPost, "/api/agent/recommend", payload, &advice, true); err != nil {
		return core.AgentAdvice{}, err
	}
	return advice, nil
}
