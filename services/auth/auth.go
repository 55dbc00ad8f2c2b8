package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	apiURLFlag        = "auth-api-url"
	minPasswordLength = 6
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   apiURLFlag,
			Usage:  "auth backend url",
			Value:  "http://localhost:5000/api/auth",
			EnvVar: "AUTH_API_URL",
		},
	)
}

var (
	ErrUnauthorized       = errors.New("not authorized")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrNameRequired     = common.NewValidationError("name", "name is required")
	ErrEmailRequired    = common.NewValidationError("email", "email is required")
	ErrEmailInvalid     = common.NewValidationError("email", "email is invalid")
	ErrPasswordRequired = common.NewValidationError("password", "password is required")
	ErrPasswordTooShort = common.NewValidationError("password", "password must be at least 6 characters")
	ErrPasswordMismatch = common.NewValidationError("confirmPassword", "passwords do not match")
)

// validate checks input shared by the http handlers and the command line
// session commands, so it cannot rely on gin binding tags.
var validate = validator.New()

// BackendError carries a rejection message of the auth backend.
type BackendError struct {
	Code    int
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

func (in *SignupInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if len(in.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return ErrPasswordMismatch
	}
	return nil
}

type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *SigninInput) validate() error {
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if in.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrEmailInvalid
	}
	return nil
}

type tokenResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

type meResponse struct {
	Success bool         `json:"success"`
	Data    *models.User `json:"data"`
}

// Client talks to the external auth backend.
type Client struct {
	url string
	cl  *http.Client
	f   *common.Fetcher
}

func New(c *cli.Context, cl *http.Client) *Client {
	return NewClient(c.String(apiURLFlag), cl)
}

func NewClient(url string, cl *http.Client) *Client {
	return &Client{
		url: strings.TrimRight(url, "/"),
		cl:  cl,
		f:   common.NewFetcher("auth", cl, 0),
	}
}

// Signup registers a new account. Input is validated before any request is made.
func (s *Client) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.ConfirmPassword = ""
	in.Email = strings.TrimSpace(in.Email)
	return s.post(ctx, "/signup", in)
}

func (s *Client) Signin(ctx context.Context, in SigninInput) (*Session, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.Email = strings.TrimSpace(in.Email)
	return s.post(ctx, "/signin", in)
}

func (s *Client) post(ctx context.Context, path string, in any) (*Session, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.cl.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "auth backend request %v failed", path)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, errors.Wrapf(err, "failed to decode auth backend response, status=%v", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode >= 300 || !tr.Success || tr.Token == "" || tr.User == nil {
		msg := tr.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &BackendError{Code: resp.StatusCode, Message: msg}
	}
	log.WithField("user", tr.User.ID).Infof("auth %v succeeded", strings.TrimPrefix(path, "/"))
	return &Session{Token: tr.Token, User: *tr.User}, nil
}

// Me resolves the user owning token.
func (s *Client) Me(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	if TokenExpired(token) {
		return nil, ErrTokenExpired
	}
	var mr meResponse
	err := s.f.GetJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"/me", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}, &mr)
	var se *common.StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch current user")
	}
	if !mr.Success || mr.Data == nil {
		return nil, ErrUnauthorized
	}
	return mr.Data, nil
}
