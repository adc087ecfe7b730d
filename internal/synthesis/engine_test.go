package synthesis_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"briefroom.app/relay/common/llm"
	"briefroom.app/relay/internal/domain"
	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/synthesis"
)

type mockLLM struct {
	completeFn func(ctx context.Context, req llm.Request) (*llm.Response, error)
	requests   []llm.Request
}

func (m *mockLLM) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return &llm.Response{Content: "brief", PromptTokens: 100, CompletionTokens: 50}, nil
}

func (m *mockLLM) Model() string {
	return "test-model"
}

var _ = Describe("Engine", func() {
	var (
		ctx    context.Context
		client *mockLLM
		engine *synthesis.Engine
		subs   []model.Submission
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLM{}
		engine = synthesis.NewEngine(client, 4096)
		subs = []model.Submission{
			{CollaboratorName: "Zoe", Role: "Engineering", Analysis: "solid"},
			{CollaboratorName: "Adam", Role: "HR", Analysis: "expensive"},
		}
	})

	Describe("Generate", func() {
		It("rejects empty submissions without calling the model", func() {
			res, err := engine.Generate(ctx, "Hire Ada?", nil, model.SessionTypeHiring)
			Expect(res).To(BeNil())
			Expect(domain.KindOf(err)).To(Equal(domain.KindInvalidRequest))
			Expect(client.requests).To(BeEmpty())
		})

		It("calls the model once with the fixed expert persona", func() {
			res, err := engine.Generate(ctx, "Hire Ada?", subs, model.SessionTypeHiring)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("brief"))
			Expect(res.PromptTokens).To(Equal(100))

			Expect(client.requests).To(HaveLen(1))
			Expect(client.requests[0].SystemPrompt).To(ContainSubstring("expert decision synthesis facilitator"))
			Expect(client.requests[0].UserPrompt).To(ContainSubstring(synthesis.SectionAgreement))
		})

		It("uses the same persona for every session type", func() {
			_, err := engine.Generate(ctx, "Report", subs, model.SessionTypeStudent)
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Generate(ctx, "Outage", subs, model.SessionTypeRisk)
			Expect(err).NotTo(HaveOccurred())
			Expect(client.requests[0].SystemPrompt).To(Equal(client.requests[1].SystemPrompt))
		})

		It("surfaces completion failures as upstream generation failures", func() {
			client.completeFn = func(context.Context, llm.Request) (*llm.Response, error) {
				return nil, context.DeadlineExceeded
			}

			_, err := engine.Generate(ctx, "Hire Ada?", subs, model.SessionTypeHiring)
			var derr *domain.Error
			Expect(errors.As(err, &derr)).To(BeTrue())
			Expect(derr.Kind).To(Equal(domain.KindUpstreamGenerationFailure))
			Expect(derr.Retryable).To(BeTrue())
		})
	})

	Describe("Revise", func() {
		It("requires feedback", func() {
			_, err := engine.Revise(ctx, synthesis.RevisionInput{Previous: "old"})
			Expect(err).To(MatchError(ContainSubstring("No feedback to incorporate yet")))
			Expect(client.requests).To(BeEmpty())
		})

		It("sends the previous text and feedback summary", func() {
			res, err := engine.Revise(ctx, synthesis.RevisionInput{
				Topic:       "Hire Ada?",
				SessionType: model.SessionTypeHiring,
				Previous:    "previous brief",
				Feedback: []model.Review{
					{CollaboratorName: "Ana", Role: "Finance", Rating: model.RatingNeedsWork, Comment: "needs more risk detail"},
				},
				Submissions: subs,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("brief"))
			Expect(client.requests[0].UserPrompt).To(ContainSubstring("previous brief"))
			Expect(client.requests[0].UserPrompt).To(ContainSubstring("needs more risk detail"))
		})
	})
})
