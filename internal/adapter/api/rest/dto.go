package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go-wishlist-app/internal/core/domain/catalog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// errBadRequest marks malformed or invalid request bodies.
var errBadRequest = errors.New("bad request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// decodeJSON reads a JSON body into dest and validates its struct tags.
func decodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	if err := validate.Struct(dest); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fe.Field()+" "+validationMessage(fe))
	}
	return fmt.Errorf("%w: %s", errBadRequest, strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid url"
	case "numeric":
		return "must be a number"
	}
	return "is invalid"
}

// Pagination helper
type Pagination struct {
	Limit  int
	Offset int
}

func NewPagination(r *http.Request) Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	return Pagination{Limit: limit, Offset: (page - 1) * limit}
}

// Window returns the page of a slice of length n as [start, end).
func (p Pagination) Window(n int) (int, int) {
	start := min(p.Offset, n)
	return start, min(start+p.Limit, n)
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type createItemRequest struct {
	ID           string `json:"id" validate:"omitempty,max=128"`
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=2000"`
	Price        string `json:"price" validate:"required,numeric"`
	Image        string `json:"image" validate:"required,http_url"`
	PurchaseLink string `json:"purchase_link" validate:"omitempty,http_url"`
	Gender       string `json:"gender"`
	Category     string `json:"category"`
	Color        string `json:"color"`
}

// toItem converts the request into a catalog item; facet values are
// checked by catalog.CatalogItem.Validate.
func (req createItemRequest) toItem() (catalog.CatalogItem, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return catalog.CatalogItem{}, fmt.Errorf("%w: price must be a decimal", errBadRequest)
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	return catalog.CatalogItem{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		Image:        req.Image,
		PurchaseLink: req.PurchaseLink,
		Gender:       catalog.Gender(req.Gender),
		Category:     catalog.Category(req.Category),
		Color:        catalog.Color(req.Color),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

type membershipResponse struct {
	ItemID string `json:"item_id"`
	Member bool   `json:"member"`
}

type wishlistResponse struct {
	ItemIDs []string `json:"item_ids"`
}

type errorResponse struct {
	Error string `json:"error"`
}
