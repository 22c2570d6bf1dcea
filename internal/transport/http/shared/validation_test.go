package shared

import "testing"

func TestCheckPayload(t *testing.T) {
	type payload struct {
		Email string  `json:"email" validate:"required,email"`
		Score float64 `json:"score" validate:"gte=0,lte=100"`
	}

	issues := CheckPayload(payload{Email: "not-an-email", Score: 120})
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %+v", len(issues), issues)
	}
	for _, issue := range issues {
		if issue.Field != "email" && issue.Field != "score" {
			t.Fatalf("unexpected field %q", issue.Field)
		}
	}

	if issues := CheckPayload(payload{Email: "a@b.example", Score: 50}); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2025-06-15"); err != nil {
		t.Fatalf("date form failed: %v", err)
	}
	if _, err := ParseDate("2025-06-15T10:00:00Z"); err != nil {
		t.Fatalf("rfc3339 form failed: %v", err)
	}
	if _, err := ParseDate("june 15"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}
