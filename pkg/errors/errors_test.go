package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestFerryErrorString(t *testing.T) {
	err := &FerryError{
		Op:   "bridge.Flush",
		Kind: KindTransport,
		Err:  errors.New("socket closed"),
	}
	got := err.Error()
	if !strings.Contains(got, "bridge.Flush") || !strings.Contains(got, "transport") {
		t.Errorf("error string %q missing op or kind", got)
	}
}

func TestFerryErrorWithMessageType(t *testing.T) {
	err := &FerryError{
		Op:          "bridge.handleInbound",
		Kind:        KindCodec,
		MessageType: "ferry/response",
		Err:         errors.New("bad frame"),
	}
	got := err.Error()
	if !strings.Contains(got, "message=ferry/response") {
		t.Errorf("error string %q should name the message type", got)
	}
}

func TestFerryErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := &FerryError{Op: "op", Kind: KindStyle, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose the underlying error")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindTransport, "transport"},
		{KindTimeout, "timeout"},
		{KindStyle, "style"},
		{KindCodec, "codec"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// captureHandler records reported errors for assertions.
type captureHandler struct {
	errs   []*FerryError
	panics []*PanicError
}

func (h *captureHandler) HandleError(err *FerryError) { h.errs = append(h.errs, err) }
func (h *captureHandler) HandlePanic(err *PanicError) { h.panics = append(h.panics, err) }

func TestReportSetsTimestamp(t *testing.T) {
	h := &captureHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	Report(&FerryError{Op: "op", Kind: KindTransport, Err: errors.New("x")})
	if len(h.errs) != 1 {
		t.Fatalf("reported %d errors, want 1", len(h.errs))
	}
	if h.errs[0].Timestamp.IsZero() {
		t.Error("Report should stamp the error")
	}
}

func TestRecoverReportsPanic(t *testing.T) {
	h := &captureHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	func() {
		defer Recover("test.op")
		panic("boom")
	}()

	if len(h.panics) != 1 {
		t.Fatalf("reported %d panics, want 1", len(h.panics))
	}
	if h.panics[0].Op != "test.op" || h.panics[0].Value != "boom" {
		t.Errorf("panic = %+v", h.panics[0])
	}
	if h.panics[0].StackTrace == "" {
		t.Error("expected a captured stack trace")
	}
}

func TestSetHandlerNilRestoresDefault(t *testing.T) {
	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("DefaultHandler = %T, want *LogHandler", DefaultHandler)
	}
}
