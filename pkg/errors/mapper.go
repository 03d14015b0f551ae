package errors

import (
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

var kindStatus = map[Kind]int{
	KindValidation:  fasthttp.StatusBadRequest,
	KindNotFound:    fasthttp.StatusNotFound,
	KindConflict:    fasthttp.StatusConflict,
	KindUnavailable: fasthttp.StatusServiceUnavailable,
}

// Mapper maps domain errors to HTTP status codes
type Mapper struct {
	logger zerolog.Logger
}

// NewMapper creates a new error mapper
func NewMapper(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// MapErrorToHTTP returns the status code and client message for err.
// Errors without a Kind are logged and hidden behind a generic message.
func (m *Mapper) MapErrorToHTTP(err error) (int, string) {
	if err == nil {
		return fasthttp.StatusOK, ""
	}

	kind := KindOf(err)
	if status, ok := kindStatus[kind]; ok {
		return status, err.Error()
	}

	if kind == KindInternal {
		m.logger.Error().Err(err).Msg("internal server error")
		return fasthttp.StatusInternalServerError, err.Error()
	}

	m.logger.Error().Err(err).Msg("unknown error")
	return fasthttp.StatusInternalServerError, "internal server error"
}
