package autofill_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/ewaste-management/internal/autofill"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GeminiClient", func() {
	var (
		server   *httptest.Server
		lastPath string
		lastKey  string
		lastBody map[string]interface{}
		status   int
		reply    string
		slogger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	)

	BeforeEach(func() {
		status = http.StatusOK
		reply = `{"candidates":[{"content":{"parts":[{"text":"{\"name\":\"ThinkPad\"}"}]}}]}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastPath = r.URL.Path
			lastKey = r.URL.Query().Get("key")
			lastBody = nil
			_ = json.NewDecoder(r.Body).Decode(&lastBody)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func(enabled bool) *autofill.GeminiClient {
		return autofill.NewGeminiClient(autofill.ClientConfig{
			Enabled: enabled,
			BaseURL: server.URL,
			APIKey:  "test-key",
			Model:   "gemini-test",
			Timeout: time.Second,
		}, slogger)
	}

	It("posts the prompt and returns the first candidate text", func() {
		text, err := newClient(true).Generate(context.Background(), "describe 83D2001GIN")

		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal(`{"name":"ThinkPad"}`))
		Expect(lastPath).To(Equal("/v1beta/models/gemini-test:generateContent"))
		Expect(lastKey).To(Equal("test-key"))
		Expect(lastBody).To(HaveKey("contents"))
		Expect(lastBody).To(HaveKey("generationConfig"))
	})

	It("reports non-2xx answers as unavailable", func() {
		status = http.StatusTooManyRequests

		_, err := newClient(true).Generate(context.Background(), "x")

		Expect(err).To(MatchError(autofill.ErrUnavailable))
	})

	It("does not call out when disabled", func() {
		lastPath = ""

		_, err := newClient(false).Generate(context.Background(), "x")

		Expect(err).To(MatchError(autofill.ErrUnavailable))
		Expect(lastPath).To(BeEmpty())
	})

	It("rejects responses without candidates", func() {
		reply = `{"candidates":[]}`

		_, err := newClient(true).Generate(context.Background(), "x")

		Expect(err).To(HaveOccurred())
	})
})
