package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newParser(contentType, body string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParserJSON(t *testing.T) {
	p := newParser("application/json", `{"amount": 150.10, "category": "  Food\u0007 ", "description": "Lunch", "flag": true}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.IsJSON() {
		t.Fatal("expected JSON body")
	}

	raw := p.RawExpense()
	if raw.Amount != "150.10" {
		t.Errorf("amount = %q, want literal number text", raw.Amount)
	}
	if raw.Category != "Food" {
		t.Errorf("category = %q", raw.Category)
	}
	if got := p.Get("flag"); got != "true" {
		t.Errorf("flag = %q", got)
	}
}

func TestRequestBodyParserDetectsJSONWithoutContentType(t *testing.T) {
	p := newParser("", `{"amount":"3"}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := p.Get("amount"); got != "3" {
		t.Errorf("amount = %q", got)
	}
}

func TestRequestBodyParserForm(t *testing.T) {
	p := newParser("application/x-www-form-urlencoded", "amount=12%2C50&savings_goal=20&date=2024-01-05")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.IsJSON() {
		t.Fatal("form parsed as JSON")
	}
	if got := p.Get("amount"); got != "12,50" {
		t.Errorf("amount = %q", got)
	}
	if got := p.Get("savingsGoal", "savings_goal"); got != "20" {
		t.Errorf("fallback key = %q", got)
	}
	if got := p.RawExpense().Date; got != "2024-01-05" {
		t.Errorf("date = %q", got)
	}
}

func TestRequestBodyParserEmptyBody(t *testing.T) {
	p := newParser("application/json", "  ")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := p.Get("amount"); got != "" {
		t.Errorf("amount = %q", got)
	}
}

func TestRequestBodyParserMalformed(t *testing.T) {
	for _, body := range []string{`{"amount":`, `[1,2]`} {
		p := newParser("application/json", body)
		err := p.Parse()
		if !errors.Is(err, errMalformedBody) {
			t.Errorf("Parse(%q) = %v, want errMalformedBody", body, err)
		}
		if !errors.Is(p.Parse(), errMalformedBody) {
			t.Errorf("second Parse(%q) lost the error", body)
		}
	}
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{json.Number("1e3"), "1e3"},
		{2.5, "2.5"},
		{false, "false"},
		{nil, ""},
		{map[string]any{}, ""},
	}
	for _, tt := range tests {
		if got := stringValue(tt.in); got != tt.want {
			t.Errorf("stringValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
