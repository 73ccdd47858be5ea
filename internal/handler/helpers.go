package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/middleware"
	"github.com/lunchorder/api/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody decodes a JSON body into dst and runs its validate tags.
// It writes the 400 response itself and reports whether to continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns the first validator failure into "field is required"
// style text.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must have at least " + fe.Param() + " entries"
	case "max":
		return field + " is too long"
	case "uuid":
		return field + " must be a valid ID"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	}
	return field + " is invalid"
}

func toSnake(s string) string {
	var b strings.Builder
	for i, c := range s {
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		b.WriteRune(c)
	}
	return b.String()
}

// principal returns the acting account. Routes using it are mounted behind
// middleware.Authenticate.
func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
	}
	return p, ok
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	d, err := service.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// writeServiceError maps service errors to HTTP status codes. Anything it
// does not recognise is logged and answered with 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case isAny(err,
		service.ErrInvalidDate, service.ErrVariantRequired, service.ErrInvalidVariant,
		service.ErrInvalidAddon, service.ErrItemInactive, service.ErrItemNotOnMenu,
		service.ErrNoSchedule, service.ErrNameRequired, service.ErrPasswordRequired,
		service.ErrInvalidPrice, service.ErrInvalidRole, service.ErrInvalidOrderStatus,
		service.ErrInvalidDayStatus, service.ErrNoVendors, service.ErrNoOrdersSelected):
		writeError(w, http.StatusBadRequest, err.Error())
	case isAny(err,
		service.ErrForbidden, service.ErrPastDate, service.ErrCutoffPassed,
		service.ErrOrderLocked, service.ErrProtectedUser):
		writeError(w, http.StatusForbidden, err.Error())
	case isAny(err,
		service.ErrOrderNotFound, service.ErrItemNotFound, service.ErrVendorNotFound,
		service.ErrUserNotFound, service.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case isAny(err, service.ErrNameTaken, service.ErrVendorInUse):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
