package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/leave-management/api"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOpenAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OpenAPI Suite")
}

var _ = Describe("Validator", func() {
	var router http.Handler

	BeforeEach(func() {
		doc, err := api.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())

		v, err := NewValidator(doc)
		Expect(err).NotTo(HaveOccurred())

		r := chi.NewRouter()
		r.Use(v.Middleware)
		echo := func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(body)
		}
		r.Post("/leaves", echo)
		r.Patch("/leaves/{id}/status", echo)
		r.Get("/metrics", echo)
		router = r
	})

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("passes valid requests through with the body intact", func() {
		rec := send(http.MethodPost, "/leaves", `{"start_date":"2024-01-10","end_date":"2024-01-12","reason":"vacation"}`)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("vacation"))
	})

	It("rejects a body with a missing required property", func() {
		rec := send(http.MethodPost, "/leaves", `{"start_date":"2024-01-10","end_date":"2024-01-12"}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		var body map[string]string
		Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]).To(ContainSubstring("reason"))
	})

	It("rejects wrongly typed properties", func() {
		rec := send(http.MethodPatch, "/leaves/1/status", `{"status":5}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a non-numeric path id", func() {
		rec := send(http.MethodPatch, "/leaves/abc/status", `{"status":"approved"}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("ignores paths outside the document", func() {
		rec := send(http.MethodGet, "/metrics", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
