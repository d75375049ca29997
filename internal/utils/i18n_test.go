package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "error.invalid_creds"); got != "Credenciales inválidas" {
		t.Fatalf("fallback to es failed: %s", got)
	}
}

func TestT_English(t *testing.T) {
	if got := T("en", "error.review_not_found"); got != "Review not found" {
		t.Fatalf("unexpected en message: %s", got)
	}
}

func TestT_UnknownKey(t *testing.T) {
	if got := T("en", "no.such.key"); got != "no.such.key" {
		t.Fatalf("want key echoed back, got %s", got)
	}
}

func TestCatalogsShareKeys(t *testing.T) {
	for key := range translations[DefaultLocale] {
		for _, loc := range SupportedLocales {
			if _, ok := translations[loc][key]; !ok {
				t.Errorf("locale %s missing key %s", loc, key)
			}
		}
	}
}
