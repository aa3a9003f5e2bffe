package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core/grade"
	logsvc "github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/tests"
)

var (
	routerOnce    sync.Once
	openapiRouter routers.Router
	routerErr     error
)

type testServer struct {
	*Server
	repo grade.Repository
	logs *bytes.Buffer
}

// setup returns a server backed by an empty in-memory store.
func setup(t *testing.T) testServer {
	return setupWithRepo(t, testutil.PrepareRepo(t))
}

func setupWithRepo(t *testing.T, repo grade.Repository) testServer {
	conf := testutil.NewConfig()

	var logs bytes.Buffer
	logger := logsvc.NewRollbarLogger(log.New(&logs, "API : ", 0), conf)
	logger.Enable(false)

	server, err := NewServer(ServerDeps{
		Conf:     conf,
		Logger:   logger,
		GradeSvc: grade.NewService(repo),
	})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return testServer{Server: server, repo: repo, logs: &logs}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name        string
	method      string
	path        string
	body        []byte
	contentType string
	wantCode    int
	wantData    []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// checkResponseSchema validates the recorded response against the OpenAPI document served by the API.
func checkResponseSchema(t *testing.T, req *http.Request, rec *httptest.ResponseRecorder) {
	t.Helper()
	routerOnce.Do(func() {
		doc, err := LoadOpenAPI()
		if err != nil {
			routerErr = err
			return
		}
		openapiRouter, routerErr = gorillamux.NewRouter(doc)
	})
	if routerErr != nil {
		t.Fatalf("checkResponseSchema() failed: %v", routerErr)
	}

	route, pathParams, err := openapiRouter.FindRoute(req)
	if err != nil {
		t.Fatalf("checkResponseSchema() failed to find route %s %s: %v", req.Method, req.URL.Path, err)
	}
	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status:  rec.Code,
		Header:  rec.Header(),
		Body:    io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
		Options: &openapi3filter.Options{IncludeResponseStatus: true},
	}
	assert.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), rec.Body.String())
}
