package model

import "testing"

func TestAPIError_Messages(t *testing.T) {
	tests := []struct {
		name        string
		err         *APIError
		wantCode    string
		wantMessage string
	}{
		{"product not found", NewProductNotFoundError(), ErrCodeProductNotFound, "Product not found"},
		{"invalid credentials", NewInvalidCredentialsError(), ErrCodeInvalidCredentials, "Invalid credentials"},
		{"token expired", NewTokenExpiredError(), ErrCodeTokenExpired, "Token has expired. Please login again."},
		{"token invalid", NewTokenInvalidError(), ErrCodeTokenInvalid, "Token is invalid."},
		{"token missing", NewTokenMissingError(), ErrCodeTokenMissing, "Token not provided."},
		{"unauthenticated", NewUnauthenticatedError(), ErrCodeUnauthenticated, "Unauthenticated. Please provide a valid Bearer token."},
		{"invalid page", NewInvalidPageError(0), ErrCodeInvalidPage, "Invalid page number: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.wantMessage)
			}
		})
	}
}

func TestAPIError_ErrorIncludesCodeAndMessage(t *testing.T) {
	err := NewInvalidPageError(-3)
	want := "[INVALID_PAGE] Invalid page number: -3"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationError_ErrorCountsFields(t *testing.T) {
	err := &ValidationError{Fields: map[string][]string{
		"title": {"The product title is required."},
		"price": {"The price field is required."},
	}}
	if got := err.Error(); got != "[VALIDATION_FAILED] 2 field(s) failed validation" {
		t.Errorf("Error() = %q", got)
	}
}

func TestParseProductSort(t *testing.T) {
	tests := []struct {
		input string
		want  ProductSort
	}{
		{"price_asc", ProductSortPriceAsc},
		{"price_desc", ProductSortPriceDesc},
		{"newest", ProductSortNewest},
		{"", ProductSortDefault},
		{"rating", ProductSortDefault},
		{"PRICE_ASC", ProductSortDefault},
	}

	for _, tt := range tests {
		t.Run("sort="+tt.input, func(t *testing.T) {
			if got := ParseProductSort(tt.input); got != tt.want {
				t.Errorf("ParseProductSort(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
