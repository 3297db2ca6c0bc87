package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsSQLiteUniqueError(t *testing.T) {
	if IsSQLiteUniqueError(nil) {
		t.Error("expected nil to not be a unique error")
	}
	if IsSQLiteUniqueError(errors.New("database is locked")) {
		t.Error("expected lock error to not be a unique error")
	}

	err := fmt.Errorf("insert feedback: %w",
		errors.New("constraint failed: UNIQUE constraint failed: feedback.swap_offer_id, feedback.given_by (2067)"))
	if !IsSQLiteUniqueError(err) {
		t.Error("expected wrapped UNIQUE message to be detected")
	}
}
