package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "mount error",
			code:    "E001",
			wantMsg: "Mount element not found",
			wantCat: CategoryMount,
		},
		{
			name:    "actor error",
			code:    "E010",
			wantMsg: "Invalid canister id",
			wantCat: CategoryActor,
		},
		{
			name:    "transport error",
			code:    "E030",
			wantMsg: "Page session not found",
			wantCat: CategoryTransport,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("mount: %w", New("E001").WithDetail("index.html"))

	if !stderrors.Is(err, New("E001")) {
		t.Error("expected errors.Is to match E001 through wrapping")
	}
	if stderrors.Is(err, New("E002")) {
		t.Error("E001 should not match E002")
	}
	if got := Code(err); got != "E001" {
		t.Errorf("Code() = %q, want E001", got)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := New("E015").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable")
	}
	if !strings.Contains(err.Error(), "dial tcp: refused") {
		t.Errorf("Error() should include cause, got %q", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E020") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E010")
	if FromError(orig, "E020") != orig {
		t.Error("FromError should return existing *Error unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "E020")
	if wrapped.Code != "E020" || wrapped.Wrapped == nil {
		t.Errorf("unexpected wrap result: %+v", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("E001").
		WithDetail(`no element with id "root"`).
		WithSuggestion(`add <div id="root"></div>`).
		Format()

	for _, want := range []string{"ERROR E001: Mount element not found", `no element with id "root"`, "Hint: add"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestRegistryCodesHaveMessages(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template %+v", code, tmpl)
		}
	}
}

func TestCodeNonCoded(t *testing.T) {
	if Code(stderrors.New("plain")) != "" {
		t.Error("plain error should have empty code")
	}
	if Code(nil) != "" {
		t.Error("nil should have empty code")
	}
}
