package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/sw33tLie/covidboard/pkg/gateway"
)

func TestNotFoundOr(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", &gateway.FetchError{Op: "country", StatusCode: http.StatusNotFound, Err: gateway.ErrStatus})
	if err := notFoundOr(notFound, "Atlantis"); err == nil || !strings.Contains(err.Error(), "country not found: Atlantis") {
		t.Errorf("404 = %v", err)
	}

	other := &gateway.FetchError{Op: "country", StatusCode: http.StatusBadGateway, Err: gateway.ErrStatus}
	if err := notFoundOr(other, "B"); !errors.Is(err, gateway.ErrStatus) {
		t.Errorf("non-404 error changed: %v", err)
	}
}

func TestTodayDetail(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "-"},
		{-3, "-"},
		{1500, "+1.5K today"},
	}
	for _, tt := range tests {
		if got := todayDetail(tt.in); got != tt.want {
			t.Errorf("todayDetail(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
