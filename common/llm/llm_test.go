package llm_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"briefroom.app/relay/common/llm"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("New", func() {
	It("requires an API key for real providers", func() {
		_, err := llm.New(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))

		_, err = llm.New(llm.Config{Provider: llm.ProviderAnthropic})
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown providers", func() {
		_, err := llm.New(llm.Config{Provider: "cohere", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	It("builds provider clients with default models", func() {
		c, err := llm.New(llm.Config{Provider: llm.ProviderOpenAI, APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Model()).To(Equal("gpt-4o"))

		c, err = llm.New(llm.Config{Provider: llm.ProviderAnthropic, APIKey: "k", Model: "claude-x"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Model()).To(Equal("claude-x"))
	})

	It("builds a stub client without a key", func() {
		c, err := llm.New(llm.Config{Provider: llm.ProviderStub, Timeout: time.Second})
		Expect(err).NotTo(HaveOccurred())

		resp, err := c.Complete(context.Background(), llm.Request{
			SystemPrompt: "system",
			UserPrompt:   "Should we hire Ada?\nmore context",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Content).To(ContainSubstring("Should we hire Ada?"))
		Expect(resp.PromptTokens).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Timeout", func() {
	It("fails a completion that outlives the configured timeout", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		c, err := llm.New(llm.Config{
			Provider: llm.ProviderOpenAI,
			APIKey:   "k",
			BaseURL:  srv.URL + "/v1/",
			Timeout:  50 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())

		start := time.Now()
		_, err = c.Complete(context.Background(), llm.Request{SystemPrompt: "s", UserPrompt: "u"})
		Expect(err).To(HaveOccurred())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	DescribeTable("classifies completion failures",
		func(err error, expected bool) {
			Expect(llm.IsRetryable(ctx, err)).To(Equal(expected))
		},
		Entry("nil error", nil, false),
		Entry("cancelled context", context.Canceled, false),
		Entry("wrapped cancellation", fmt.Errorf("openai chat: %w", context.Canceled), false),
		Entry("deadline exceeded", context.DeadlineExceeded, true),
		Entry("empty completion", llm.ErrEmptyCompletion, true),
		Entry("network failure", errors.New("connection reset by peer"), true),
	)
})
