package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/sundayezeilo/shortlinks/codegen"
	"github.com/sundayezeilo/shortlinks/internal/errx"
)

const (
	DefaultCodeLength      = 6
	MinCodeLength          = 6
	MaxCodeLength          = 8
	MaxURLLength           = 2048
	DefaultCodeMaxAttempts = 5
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)

// reservedCodes are paths the server routes before the redirect handler.
var reservedCodes = map[string]bool{
	"healthz": true,
}

// ErrCodeGenerationExhausted is returned when every generated code collided
// with an active link.
var ErrCodeGenerationExhausted = errors.New("could not generate a unique code")

// CreateLinkRequest represents the parameters for creating a new link.
type CreateLinkRequest struct {
	Target string
	Code   string // Optional: if empty, a code will be generated
}

// Service defines the business logic operations for URL shortening.
type Service interface {
	Create(ctx context.Context, req CreateLinkRequest) (Link, error)
	List(ctx context.Context, order ListOrder) ([]Link, error)
	Get(ctx context.Context, code string) (Link, error)
	Delete(ctx context.Context, code string) error

	// Redirect records a click and returns the target URL.
	Redirect(ctx context.Context, code string) (string, error)
}

type service struct {
	repo            Repository
	codeGenerator   codegen.Generator
	codeLength      int
	codeMaxAttempts int
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	CodeGenerator   codegen.Generator
	CodeLength      int
	CodeMaxAttempts int // generated codes tried before giving up (default: 5)
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	gen := config.CodeGenerator
	if gen == nil {
		gen = codegen.NewBase62()
	}

	length := config.CodeLength
	if length < MinCodeLength || length > MaxCodeLength {
		length = DefaultCodeLength
	}

	attempts := config.CodeMaxAttempts
	if attempts <= 0 {
		attempts = DefaultCodeMaxAttempts
	}

	return &service{
		repo:            repo,
		codeGenerator:   gen,
		codeLength:      length,
		codeMaxAttempts: attempts,
	}
}

// ValidCode reports whether code has the shape of a short code.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

func (s *service) Create(ctx context.Context, req CreateLinkRequest) (Link, error) {
	const op = "shortener.service.Create"

	if err := validateURL(req.Target); err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	if req.Code != "" {
		if !ValidCode(req.Code) {
			return Link{}, errx.E(op, errx.Invalid,
				fmt.Errorf("code must be %d-%d letters or digits", MinCodeLength, MaxCodeLength))
		}
		if reservedCodes[req.Code] {
			return Link{}, errx.E(op, errx.Invalid, fmt.Errorf("code %q is reserved", req.Code))
		}

		created, err := s.repo.Create(ctx, Link{Target: req.Target, Code: req.Code})
		if err != nil {
			return Link{}, errx.Wrap(op, err)
		}
		return created, nil
	}

	for range s.codeMaxAttempts {
		code, err := s.codeGenerator.Generate(s.codeLength)
		if err != nil {
			return Link{}, errx.E(op, errx.Unavailable, err)
		}
		if reservedCodes[code] {
			continue
		}

		taken, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return Link{}, errx.Wrap(op, err)
		}
		if taken {
			continue
		}

		created, err := s.repo.Create(ctx, Link{Target: req.Target, Code: code})
		if err == nil {
			return created, nil
		}
		// Lost a race with another insert of the same code.
		if !errx.Is(err, errx.Conflict) {
			return Link{}, errx.Wrap(op, err)
		}
	}

	return Link{}, errx.E(op, errx.Unavailable,
		fmt.Errorf("%w after %d attempts", ErrCodeGenerationExhausted, s.codeMaxAttempts))
}

func (s *service) List(ctx context.Context, order ListOrder) ([]Link, error) {
	const op = "shortener.service.List"

	links, err := s.repo.List(ctx, order)
	if err != nil {
		return nil, errx.Wrap(op, err)
	}
	return links, nil
}

func (s *service) Get(ctx context.Context, code string) (Link, error) {
	const op = "shortener.service.Get"

	if !ValidCode(code) {
		return Link{}, errx.E(op, errx.NotFound, errMalformedCode(code))
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Link{}, errx.Wrap(op, err)
	}
	return link, nil
}

func (s *service) Delete(ctx context.Context, code string) error {
	const op = "shortener.service.Delete"

	if !ValidCode(code) {
		return errx.E(op, errx.NotFound, errMalformedCode(code))
	}

	if err := s.repo.SoftDelete(ctx, code); err != nil {
		return errx.Wrap(op, err)
	}
	return nil
}

func (s *service) Redirect(ctx context.Context, code string) (string, error) {
	const op = "shortener.service.Redirect"

	if !ValidCode(code) {
		return "", errx.E(op, errx.NotFound, errMalformedCode(code))
	}

	link, err := s.repo.RecordClick(ctx, code)
	if err != nil {
		return "", errx.Wrap(op, err)
	}
	return link.Target, nil
}

func errMalformedCode(code string) error {
	return fmt.Errorf("malformed code %q", code)
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("url cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("url too long (max %d characters)", MaxURLLength)
	}

	if strings.ContainsFunc(rawURL, unicode.IsSpace) {
		return errors.New("url cannot contain whitespace")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must include scheme (http or https)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsedURL.Hostname() == "" {
		return errors.New("url must include host")
	}
	return nil
}
