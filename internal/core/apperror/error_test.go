package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewInsufficientStockMessage(t *testing.T) {
	err := NewInsufficientStock("item-1", 70, 1000)

	want := "Insufficient stock. Available: 70, Requested: 1000"
	if err.Message != want {
		t.Errorf("message mismatch\nwant: %s\ngot:  %s", want, err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("want status 422, got %d", err.HTTPStatus)
	}
	if err.Details["item_id"] != "item-1" {
		t.Errorf("details missing item_id: %v", err.Details)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	base := NewNotFound("item", "abc")
	wrapped := fmt.Errorf("load item: %w", base)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("AsAppError failed on wrapped error")
	}
	if appErr.Code != CodeNotFound {
		t.Errorf("want %s, got %s", CodeNotFound, appErr.Code)
	}

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound failed on wrapped error")
	}
	if IsInsufficientStock(wrapped) {
		t.Error("IsInsufficientStock matched a not-found error")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternal(cause)

	if !errors.Is(err, cause) {
		t.Error("Unwrap must expose the cause")
	}
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("bad input").WithDetail("field", "quantity")
	if err.Details["field"] != "quantity" {
		t.Errorf("detail not set: %v", err.Details)
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidation("x"), http.StatusBadRequest},
		{NewNotFound("item", "1"), http.StatusNotFound},
		{NewInsufficientStock("1", 0, 1), http.StatusUnprocessableEntity},
		{NewInvalidState("x"), http.StatusUnprocessableEntity},
		{NewConflict("x"), http.StatusConflict},
		{NewUnauthorized("x"), http.StatusUnauthorized},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := GetHTTPStatus(tt.err); got != tt.want {
			t.Errorf("GetHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
