package validator

import (
	"strings"
	"testing"
)

type contractInput struct {
	Type   string `json:"type" validate:"required,contract_type"`
	Status string `json:"status,omitempty" validate:"omitempty,contract_status"`
	Notes  string `json:"notes" validate:"max=5"`
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v := New()
	if err := v.RegisterOneOf("contract_type", []string{"mandate", "rental"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := v.RegisterOneOf("contract_status", []string{"draft", "signed"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return v
}

func TestRegisterOneOf(t *testing.T) {
	v := newTestValidator(t)
	if err := v.Struct(contractInput{Type: "mandate"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	if err := v.Struct(contractInput{Type: "lease"}); err == nil {
		t.Fatal("expected unknown contract type to fail")
	}
	if err := v.Struct(contractInput{Type: "rental", Status: "Signed"}); err == nil {
		t.Fatal("membership is case-sensitive")
	}
}

func TestDescribeUsesJSONNames(t *testing.T) {
	v := newTestValidator(t)
	problems := Describe(v.Struct(contractInput{Notes: "too long"}))
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", problems)
	}
	joined := strings.Join(problems, "; ")
	if !strings.Contains(joined, "type: failed required") || !strings.Contains(joined, "notes: failed max=5") {
		t.Fatalf("unexpected messages %q", joined)
	}
}

func TestDescribeNil(t *testing.T) {
	if Describe(nil) != nil {
		t.Fatal("expected nil for no error")
	}
}
