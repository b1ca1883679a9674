package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

// MaxBodyBytes caps request bodies; oversized payloads fail with 413.
const MaxBodyBytes int64 = 1 << 20 // 1MB

// DecodeJSON decodes a JSON request body into dst. The body is capped at
// MaxBodyBytes and trailing data is rejected.
func DecodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		return decodeErr(err)
	}

	// Disallow trailing values: {}{} must fail.
	if err := dec.Decode(&struct{}{}); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return decodeErr(err)
	}

	return domain.ErrInvalidJSON(errors.New("multiple JSON values"))
}

func decodeErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.ErrBodyTooLarge(tooLarge.Limit)
	}
	return domain.ErrInvalidJSON(err)
}
