package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"podium/internal/api"
	"podium/internal/logging"
)

// RegistrationBackend covers the REST calls the sign-up conversation makes.
type RegistrationBackend interface {
	Products(ctx context.Context) ([]api.Product, error)
	ExtractInfo(ctx context.Context, message, field string) (*api.Extraction, error)
	RegisterUser(ctx context.Context, name, email, phone string) (*api.RegisterResult, error)
}

// registrationStep is one stop in the linear sign-up conversation.
type registrationStep int

const (
	stepName registrationStep = iota
	stepEmail
	stepPhone
	stepProduct
	stepComplete
)

var stepFields = map[registrationStep]string{
	stepName:  "name",
	stepEmail: "email",
	stepPhone: "phone",
}

var stepPrompts = map[registrationStep]string{
	stepName:  "Your name",
	stepEmail: "Your email",
	stepPhone: "Your phone number",
}

// RegistrationResult is the completed sign-up: the server-assigned user and
// the product the viewer picked.
type RegistrationResult struct {
	UserID  int64
	Name    string
	Email   string
	Phone   string
	Product api.Product
}

// Registration drives the sign-up conversation over a line-based input.
// Each free-text answer is validated by the extraction endpoint and the
// conversation only advances on a valid result.
type Registration struct {
	backend  RegistrationBackend
	renderer *Renderer
	input    *bufio.Scanner
	logger   *slog.Logger
}

// NewRegistration builds the conversation over the given reader.
func NewRegistration(backend RegistrationBackend, renderer *Renderer, in io.Reader, logger *slog.Logger) *Registration {
	return &Registration{
		backend:  backend,
		renderer: renderer,
		input:    bufio.NewScanner(in),
		logger:   logging.NewComponentLogger(logger, "registration"),
	}
}

// Run walks the viewer through name, email, phone, and product selection,
// then registers the user. A failed final submission offers a retry rather
// than leaving the conversation stuck.
func (r *Registration) Run(ctx context.Context) (*RegistrationResult, error) {
	result := &RegistrationResult{}

	for step := stepName; step != stepComplete; {
		switch step {
		case stepName, stepEmail, stepPhone:
			value, err := r.collectField(ctx, step)
			if err != nil {
				return nil, err
			}
			switch step {
			case stepName:
				result.Name = value
			case stepEmail:
				result.Email = value
			case stepPhone:
				result.Phone = value
			}
			step++

		case stepProduct:
			product, err := r.collectProduct(ctx)
			if err != nil {
				return nil, err
			}
			result.Product = *product
			step++
		}
	}

	for {
		registered, err := r.backend.RegisterUser(ctx, result.Name, result.Email, result.Phone)
		if err == nil {
			result.UserID = registered.UserID
			r.renderer.Notice(fmt.Sprintf("Welcome, %s.", result.Name))
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("registration submit failed", logging.Error(err))
		r.renderer.Error("registration failed: " + err.Error())
		r.renderer.Prompt("Try again? (y/n)")
		answer, readErr := r.readLine()
		if readErr != nil {
			return nil, readErr
		}
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			return nil, fmt.Errorf("registration abandoned: %w", err)
		}
	}
}

// collectField re-prompts until the extraction endpoint accepts the answer.
// An invalid answer never advances the conversation.
func (r *Registration) collectField(ctx context.Context, step registrationStep) (string, error) {
	field := stepFields[step]
	for {
		r.renderer.Prompt(stepPrompts[step])
		answer, err := r.readLine()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(answer) == "" {
			continue
		}

		extraction, err := r.backend.ExtractInfo(ctx, answer, field)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.renderer.Error("could not validate " + field + ": " + err.Error())
			continue
		}
		if !extraction.Valid {
			message := extraction.Error
			if message == "" {
				message = "that " + field + " doesn't look right, please try again"
			}
			r.renderer.Error(message)
			continue
		}
		return extraction.Extracted, nil
	}
}

// collectProduct shows the product list and matches input by 1-based index
// or case-insensitive substring; unmatched input re-displays the list.
func (r *Registration) collectProduct(ctx context.Context) (*api.Product, error) {
	products, err := r.backend.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return nil, errors.New("no products available")
	}

	for {
		r.renderer.Notice("Which product would you like to see?")
		for i, product := range products {
			r.renderer.Status(fmt.Sprintf("  %d. %s", i+1, product.Name))
		}
		r.renderer.Prompt("Product")
		answer, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if product := MatchProduct(products, answer); product != nil {
			return product, nil
		}
		r.renderer.Error("no matching product, pick a number or part of a name")
	}
}

func (r *Registration) readLine() (string, error) {
	if !r.input.Scan() {
		if err := r.input.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.input.Text(), nil
}

// MatchProduct resolves viewer input against the product list: a 1-based
// numeral selects by position, anything else matches case-insensitively as
// a substring of the product name. Out-of-range numerals match nothing.
func MatchProduct(products []api.Product, input string) *api.Product {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	if index, err := strconv.Atoi(trimmed); err == nil {
		if index < 1 || index > len(products) {
			return nil
		}
		return &products[index-1]
	}

	fold := cases.Fold()
	needle := fold.String(trimmed)
	for i := range products {
		if strings.Contains(fold.String(products[i].Name), needle) {
			return &products[i]
		}
	}
	return nil
}
