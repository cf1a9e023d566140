package sheets

import (
	"context"
	"strings"
	"testing"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error when GOOGLE_SPREADSHEET_ID is unset")
	}
	if !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Errorf("error %q does not name the missing variable", err)
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error when no credentials are configured")
	}
	if !strings.Contains(err.Error(), "service account") {
		t.Errorf("error %q does not mention credentials", err)
	}
}
