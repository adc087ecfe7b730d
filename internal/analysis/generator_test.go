package analysis_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"briefroom.app/relay/common/llm"
	"briefroom.app/relay/internal/analysis"
	"briefroom.app/relay/internal/domain"
	"briefroom.app/relay/internal/model"
	"briefroom.app/relay/internal/prompt"
)

var _ = Describe("Generator", func() {
	var (
		ctx       context.Context
		client    *mockLLM
		assembler *mockAssembler
		gen       *analysis.Generator
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockLLM{}
		assembler = &mockAssembler{}
		gen = analysis.NewGenerator(client, assembler, 2048)
	})

	Describe("GenerateMC", func() {
		DescribeTable("rejects missing input before calling the model",
			func(topic, background string) {
				_, err := gen.GenerateMC(ctx, analysis.MCRequest{Topic: topic, Context: background})
				Expect(domain.KindOf(err)).To(Equal(domain.KindInvalidRequest))
				Expect(client.requests).To(BeEmpty())
			},
			Entry("empty topic", "", "background"),
			Entry("blank topic", "   ", "background"),
			Entry("empty context", "Hire Ada?", ""),
		)

		It("uses the role-agnostic prompt and returns token usage", func() {
			res, err := gen.GenerateMC(ctx, analysis.MCRequest{
				Topic:       "Enter the German market?",
				Context:     "We have two distributors interested.",
				SessionType: model.SessionTypeStrategy,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("analysis"))
			Expect(res.Usage).To(Equal(analysis.TokenUsage{InputTokens: 10, OutputTokens: 5}))
			Expect(res.Model).To(Equal("test-model"))

			Expect(client.requests).To(HaveLen(1))
			Expect(client.requests[0].SystemPrompt).To(Equal(prompt.SystemPromptForAnalysis(model.SessionTypeStrategy)))
			Expect(client.requests[0].UserPrompt).To(ContainSubstring("Enter the German market?"))
			Expect(client.requests[0].UserPrompt).To(ContainSubstring("two distributors"))
			Expect(client.requests[0].MaxTokens).To(Equal(2048))
		})

		DescribeTable("appends boilerplate only for hiring and performance",
			func(st model.SessionType, expectBoilerplate bool) {
				res, err := gen.GenerateMC(ctx, analysis.MCRequest{Topic: "t", Context: "c", SessionType: st})
				Expect(err).NotTo(HaveOccurred())
				if expectBoilerplate {
					Expect(res.Text).To(Equal("analysis" + prompt.PostAnalysisBoilerplate(st)))
					Expect(res.Text).To(ContainSubstring("Reviewer guidance"))
				} else {
					Expect(res.Text).To(Equal("analysis"))
				}
			},
			Entry("hiring", model.SessionTypeHiring, true),
			Entry("performance", model.SessionTypePerformance, true),
			Entry("risk", model.SessionTypeRisk, false),
			Entry("general", model.SessionTypeGeneral, false),
		)

		It("appends assembled documents to the prompt", func() {
			assembler.assembleFn = func(_ context.Context, docs []model.DocumentRef) string {
				Expect(docs).To(HaveLen(1))
				return "--- DOCUMENT: cv.pdf ---\nexperience\n--- END DOCUMENT ---"
			}

			_, err := gen.GenerateMC(ctx, analysis.MCRequest{
				Topic:     "t",
				Context:   "c",
				Documents: []model.DocumentRef{{Name: "cv.pdf", URL: "s3://cv"}},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(client.requests[0].UserPrompt).To(HaveSuffix("--- END DOCUMENT ---"))
			Expect(client.requests[0].UserPrompt).To(ContainSubstring("Supporting documents"))
		})

		It("maps completion failures to upstream generation failure", func() {
			client.completeFn = func(context.Context, llm.Request) (*llm.Response, error) {
				return nil, errors.New("quota exceeded")
			}

			res, err := gen.GenerateMC(ctx, analysis.MCRequest{Topic: "t", Context: "c", SessionType: model.SessionTypeHiring})

			Expect(res).To(BeNil())
			var derr *domain.Error
			Expect(errors.As(err, &derr)).To(BeTrue())
			Expect(derr.Kind).To(Equal(domain.KindUpstreamGenerationFailure))
			Expect(derr.Message).To(ContainSubstring("quota exceeded"))
			Expect(client.requests).To(HaveLen(1))
		})
	})

	Describe("GenerateCollaborator", func() {
		It("requires a topic", func() {
			_, err := gen.GenerateCollaborator(ctx, analysis.CollaboratorRequest{Role: "HR"})
			Expect(domain.KindOf(err)).To(Equal(domain.KindInvalidRequest))
			Expect(client.requests).To(BeEmpty())
		})

		It("uses the role-aware prompt and includes the custom focus", func() {
			res, err := gen.GenerateCollaborator(ctx, analysis.CollaboratorRequest{
				Topic:        "Vendor outage",
				CustomPrompt: "Focus on contract exit terms",
				SessionType:  model.SessionTypeRisk,
				Role:         "Vendor Management",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("analysis"))
			Expect(client.requests[0].SystemPrompt).To(Equal(prompt.SystemPromptForCollaborator(model.SessionTypeRisk, "Vendor Management")))
			Expect(client.requests[0].UserPrompt).To(ContainSubstring("Focus on contract exit terms"))
			Expect(client.requests[0].UserPrompt).To(ContainSubstring("Your role: Vendor Management"))
		})

		It("never appends boilerplate", func() {
			res, err := gen.GenerateCollaborator(ctx, analysis.CollaboratorRequest{
				Topic:       "Hire Ada?",
				SessionType: model.SessionTypeHiring,
				Role:        "Engineering",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("analysis"))
		})
	})
})
