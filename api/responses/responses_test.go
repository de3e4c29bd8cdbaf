package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/harborpoint/billing-backend/pkg/errors"
)

func TestWriteSuccessEncodesPayloadVerbatim(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]bool{"received": true})

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body["received"] {
		t.Fatalf("expected received true, got %v", body)
	}
}

func TestWriteErrorAlwaysAnswers400(t *testing.T) {
	cases := map[string]error{
		"typed dependency": pkgerrors.New(pkgerrors.CodeDependency, "stripe unreachable"),
		"typed validation": pkgerrors.New(pkgerrors.CodeValidation, "priceId is required"),
		"untyped":          errors.New("plain failure"),
		"nil":              nil,
	}

	for name, err := range cases {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), nil, rec, err)
		if rec.Code != 400 {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
		var body map[string]string
		if jsonErr := json.Unmarshal(rec.Body.Bytes(), &body); jsonErr != nil {
			t.Fatalf("%s: decode body: %v", name, jsonErr)
		}
		if body["error"] == "" {
			t.Fatalf("%s: expected error message in body", name)
		}
	}
}

func TestWriteErrorUsesClientSafeMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeValidation, "priceId is required"))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "priceId is required" {
		t.Fatalf("expected typed message, got %q", body["error"])
	}
}

func TestWriteErrorMasksInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "connection pool exhausted"))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("expected masked message, got %q", body["error"])
	}
}
