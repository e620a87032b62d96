package player

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"podium/internal/api"
	"podium/internal/logging"
)

type fakeRegistrationBackend struct {
	products    []api.Product
	extractions map[string][]api.Extraction
	extractSeen map[string][]string
	registerErr []error
	registered  int
}

func (f *fakeRegistrationBackend) Products(ctx context.Context) ([]api.Product, error) {
	return f.products, nil
}

func (f *fakeRegistrationBackend) ExtractInfo(ctx context.Context, message, field string) (*api.Extraction, error) {
	if f.extractSeen == nil {
		f.extractSeen = make(map[string][]string)
	}
	f.extractSeen[field] = append(f.extractSeen[field], message)

	queue := f.extractions[field]
	if len(queue) == 0 {
		return &api.Extraction{Extracted: strings.TrimSpace(message), Valid: true}, nil
	}
	next := queue[0]
	f.extractions[field] = queue[1:]
	return &next, nil
}

func (f *fakeRegistrationBackend) RegisterUser(ctx context.Context, name, email, phone string) (*api.RegisterResult, error) {
	if len(f.registerErr) > 0 {
		err := f.registerErr[0]
		f.registerErr = f.registerErr[1:]
		if err != nil {
			return nil, err
		}
	}
	f.registered++
	return &api.RegisterResult{Status: "success", UserID: 42}, nil
}

func newTestRegistration(backend *fakeRegistrationBackend, input string) *Registration {
	renderer := newRenderer(&bytes.Buffer{}, false)
	return NewRegistration(backend, renderer, strings.NewReader(input), logging.NewNop())
}

func TestRegistrationCompletesLinearFlow(t *testing.T) {
	backend := &fakeRegistrationBackend{
		products: []api.Product{{ID: 7, Name: "Widget Pro"}},
	}
	reg := newTestRegistration(backend, "Ada Lovelace\nada@example.com\n555-0100\n1\n")

	result, err := reg.Run(context.Background())
	if err != nil {
		t.Fatalf("run registration: %v", err)
	}
	if result.UserID != 42 {
		t.Fatalf("expected user 42, got %d", result.UserID)
	}
	if result.Name != "Ada Lovelace" || result.Email != "ada@example.com" || result.Phone != "555-0100" {
		t.Fatalf("unexpected extracted fields: %+v", result)
	}
	if result.Product.ID != 7 {
		t.Fatalf("expected product 7, got %d", result.Product.ID)
	}
}

func TestRegistrationInvalidInputDoesNotAdvance(t *testing.T) {
	backend := &fakeRegistrationBackend{
		products: []api.Product{{ID: 1, Name: "Widget"}},
		extractions: map[string][]api.Extraction{
			"email": {
				{Valid: false, Error: "that does not look like an email"},
				{Extracted: "ada@example.com", Valid: true},
			},
		},
	}
	reg := newTestRegistration(backend, "Ada\nnope\nada@example.com\n555-0100\nwidget\n")

	result, err := reg.Run(context.Background())
	if err != nil {
		t.Fatalf("run registration: %v", err)
	}
	if got := len(backend.extractSeen["email"]); got != 2 {
		t.Fatalf("expected email step to re-prompt once, saw %d attempts", got)
	}
	if result.Email != "ada@example.com" {
		t.Fatalf("expected the retried email, got %q", result.Email)
	}
	// Phone must only have been asked after email validated.
	if got := len(backend.extractSeen["phone"]); got != 1 {
		t.Fatalf("expected a single phone attempt, saw %d", got)
	}
}

func TestRegistrationRetriesFailedSubmission(t *testing.T) {
	backend := &fakeRegistrationBackend{
		products:    []api.Product{{ID: 1, Name: "Widget"}},
		registerErr: []error{errors.New("connection reset")},
	}
	reg := newTestRegistration(backend, "Ada\nada@example.com\n555-0100\n1\ny\n")

	result, err := reg.Run(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if backend.registered != 1 {
		t.Fatalf("expected one successful registration, got %d", backend.registered)
	}
	if result.UserID != 42 {
		t.Fatalf("expected user 42 after retry, got %d", result.UserID)
	}
}

func TestRegistrationAbandonedSubmissionFails(t *testing.T) {
	backend := &fakeRegistrationBackend{
		products:    []api.Product{{ID: 1, Name: "Widget"}},
		registerErr: []error{errors.New("connection reset")},
	}
	reg := newTestRegistration(backend, "Ada\nada@example.com\n555-0100\n1\nn\n")

	if _, err := reg.Run(context.Background()); err == nil {
		t.Fatal("expected error after declining retry")
	}
}

func TestMatchProduct(t *testing.T) {
	products := []api.Product{
		{ID: 1, Name: "Alpha Widget"},
		{ID: 2, Name: "Beta Gadget"},
		{ID: 3, Name: "Gamma Appliance"},
	}

	cases := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "first by numeral", input: "1", want: 1},
		{name: "last by numeral", input: "3", want: 3},
		{name: "numeral zero out of range", input: "0", want: 0},
		{name: "numeral past end out of range", input: "4", want: 0},
		{name: "case-insensitive substring", input: "beta", want: 2},
		{name: "substring mid-name", input: "GADGET", want: 2},
		{name: "no match", input: "delta", want: 0},
		{name: "blank", input: "   ", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MatchProduct(products, tc.input)
			if tc.want == 0 {
				if got != nil {
					t.Fatalf("expected no match, got %q", got.Name)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected product %d, got none", tc.want)
			}
			if got.ID != tc.want {
				t.Fatalf("expected product %d, got %d", tc.want, got.ID)
			}
		})
	}
}
