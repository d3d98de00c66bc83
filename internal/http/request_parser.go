package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"budgettracker/internal/core"
)

// maxBodyBytes caps request bodies; expense submissions are tiny.
const maxBodyBytes = 64 << 10

// errMalformedBody marks bodies that are neither valid JSON nor form data.
var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its fields as trimmed strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. JSON is detected by content type or a leading
// brace; anything else is read as a query string.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
			return p.err
		}
		return nil
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns the first non-empty value among keys.
func (p *RequestBodyParser) Get(keys ...string) string {
	for _, key := range keys {
		var v string
		if p.jsonData != nil {
			v = stringValue(p.jsonData[key])
		} else if p.formData != nil {
			v = p.formData.Get(key)
		}
		if v = core.CleanText(v); v != "" {
			return v
		}
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// RawExpense reads the expense fields of a submission.
func (p *RequestBodyParser) RawExpense() core.RawExpense {
	return core.RawExpense{
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        p.Get("date"),
	}
}

// stringValue renders a decoded JSON scalar. Numbers keep their literal
// text so that amounts are not rounded through float64.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// requireMethod writes a 405 and returns false when r.Method is not allowed.
func requireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}
