package document_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"briefroom.app/relay/internal/document"
	"briefroom.app/relay/internal/model"
)

type fakeFetcher struct {
	bodies map[string][]byte
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.bodies[url], nil
}

type fakeExtractor struct {
	failFor map[string]bool
}

func (e *fakeExtractor) Extract(_ context.Context, _ string, name string, data []byte) (string, error) {
	if e.failFor[name] {
		return "", errors.New("corrupt file")
	}
	return string(data), nil
}

var _ = Describe("Assembler", func() {
	var (
		ctx       context.Context
		fetcher   *fakeFetcher
		extractor *fakeExtractor
		assembler *document.Assembler
	)

	BeforeEach(func() {
		ctx = context.Background()
		fetcher = &fakeFetcher{
			bodies: map[string][]byte{
				"s3://a": []byte("alpha text"),
				"s3://b": []byte("beta text"),
				"s3://c": []byte("gamma text"),
				"s3://e": []byte("   \n"),
			},
			errs: map[string]error{},
		}
		extractor = &fakeExtractor{failFor: map[string]bool{}}
		assembler = document.NewAssembler(fetcher, extractor)
	})

	It("returns empty string for no documents", func() {
		Expect(assembler.Assemble(ctx, nil)).To(BeEmpty())
		Expect(fetcher.calls).To(BeEmpty())
	})

	It("wraps each document in delimiters", func() {
		out := assembler.Assemble(ctx, []model.DocumentRef{{Name: "a.txt", URL: "s3://a"}})
		Expect(out).To(Equal("--- DOCUMENT: a.txt ---\nalpha text\n--- END DOCUMENT ---"))
	})

	It("keeps order and isolates a failing document", func() {
		extractor.failFor["b.pdf"] = true

		out := assembler.Assemble(ctx, []model.DocumentRef{
			{Name: "a.txt", URL: "s3://a"},
			{Name: "b.pdf", URL: "s3://b"},
			{Name: "c.txt", URL: "s3://c"},
		})

		a := strings.Index(out, "alpha text")
		b := strings.Index(out, "could not extract text from: b.pdf")
		c := strings.Index(out, "gamma text")
		Expect(a).To(BeNumerically(">=", 0))
		Expect(b).To(BeNumerically(">", a))
		Expect(c).To(BeNumerically(">", b))
		Expect(out).NotTo(ContainSubstring("beta text"))
	})

	It("uses a placeholder when the fetch fails or the url is missing", func() {
		fetcher.errs["s3://a"] = errors.New("403 forbidden")

		out := assembler.Assemble(ctx, []model.DocumentRef{
			{Name: "a.txt", URL: "s3://a"},
			{Name: "nourl.txt"},
			{Name: "c.txt", URL: "s3://c"},
		})

		Expect(out).To(ContainSubstring("could not extract text from: a.txt"))
		Expect(out).To(ContainSubstring("could not extract text from: nourl.txt"))
		Expect(out).To(ContainSubstring("--- DOCUMENT: c.txt ---"))
	})

	It("skips documents with blank text", func() {
		out := assembler.Assemble(ctx, []model.DocumentRef{
			{Name: "empty.txt", URL: "s3://e"},
			{Name: "c.txt", URL: "s3://c"},
		})
		Expect(out).NotTo(ContainSubstring("empty.txt"))
		Expect(out).To(HavePrefix("--- DOCUMENT: c.txt ---"))
	})

	It("uses a placeholder for documents hosted outside the allowed storage hosts", func() {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("internal metadata secret"))
		}))
		defer server.Close()

		assembler := document.NewAssembler(
			document.NewHTTPFetcher(5*time.Second, 1024, []string{"uploads.briefroom.test"}),
			document.NewTextExtractor(),
		)
		out := assembler.Assemble(ctx, []model.DocumentRef{
			{Name: "x.txt", URL: server.URL + "/latest/meta-data", MediaType: "text/plain"},
		})

		Expect(out).To(Equal(document.Placeholder("x.txt")))
		Expect(out).NotTo(ContainSubstring("secret"))
		Expect(hits.Load()).To(BeZero())
	})
})
