// pkg/router/respond.go
package router

import (
	"encoding/json"
	"net/http"

	"github.com/svishnu88/jlserve/pkg/schema"
)

// detailBody mirrors the error envelope schema-validated API clients
// expect: a plain message for handler failures, a problem list for decode
// failures. Both are carried under "detail".
type detailBody struct {
	Detail any `json:"detail"`
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeBody(w, status, detailBody{Detail: msg})
}

func writeProblems(w http.ResponseWriter, status int, problems []schema.Problem) {
	writeBody(w, status, detailBody{Detail: problems})
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload, err := json.Marshal(body)
	if err != nil {
		_, _ = w.Write([]byte(`{"detail":"response encoding failed"}`))
		return
	}
	_, _ = w.Write(payload)
}
