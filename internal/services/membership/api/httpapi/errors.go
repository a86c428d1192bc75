package httpapi

import (
	"errors"
	"log"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/encoding/protojson"

	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
	"github.com/louisbranch/memberdesk/internal/platform/errors/i18n"
	"github.com/louisbranch/memberdesk/internal/platform/requestctx"
)

// writeError renders err as a google.rpc.Status JSON body. Errors without a
// domain code are logged and reported as internal.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	span := trace.SpanFromContext(r.Context())
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "internal error")
		domainErr = apperrors.Wrap(apperrors.CodeUnknown, "internal error", err)
	}
	span.SetAttributes(attribute.String("membership.error_code", string(domainErr.Code)))

	locale := requestctx.LocaleFromContext(r.Context())
	if locale == "" {
		locale = i18n.BaseLocale
	}
	message := i18n.Message(locale, string(domainErr.Code), domainErr.Metadata)
	st := domainErr.ToStatus(locale, message)

	body, marshalErr := protojson.Marshal(st.Proto())
	if marshalErr != nil {
		log.Printf("marshal error status: %v", marshalErr)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(st.Code()))
	_, _ = w.Write(body)
}

// httpStatus maps a gRPC status code to its HTTP equivalent.
func httpStatus(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// withLocale negotiates the response locale from Accept-Language.
func withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := i18n.MatchLocale(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(requestctx.WithLocale(r.Context(), locale)))
	})
}
