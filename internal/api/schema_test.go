package api

import (
	"encoding/json"
	"net/url"
	"testing"
)

func decodeBody(t *testing.T, s string) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal([]byte(s), &body); err != nil {
		t.Fatalf("failed to decode test body: %v", err)
	}
	return body
}

func fieldMessages(errs []FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

func TestProductSchema_Valid(t *testing.T) {
	body := decodeBody(t, `{"productName":"Table","code":"T-01","price":150}`)
	if errs := productSchema.Validate(body); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestProductSchema_MissingRequired(t *testing.T) {
	body := decodeBody(t, `{"price":150}`)
	errs := productSchema.Validate(body)
	msgs := fieldMessages(errs)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if msgs["productName"] != "is required" {
		t.Errorf("productName: unexpected message %q", msgs["productName"])
	}
	if msgs["code"] != "is required" {
		t.Errorf("code: unexpected message %q", msgs["code"])
	}
}

func TestProductSchema_WrongTypes(t *testing.T) {
	body := decodeBody(t, `{"productName":12,"code":"T-01","price":"expensive"}`)
	msgs := fieldMessages(productSchema.Validate(body))
	if msgs["productName"] != "must be a string" {
		t.Errorf("productName: unexpected message %q", msgs["productName"])
	}
	if msgs["price"] != "must be a number" {
		t.Errorf("price: unexpected message %q", msgs["price"])
	}
}

func TestProductSchema_ReportsEveryViolation(t *testing.T) {
	// Partial validation is not permitted: all violations come back at once.
	body := decodeBody(t, `{"productName":1,"price":"x","model":2}`)
	errs := productSchema.Validate(body)
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors (code missing, 3 wrong types), got %v", errs)
	}
}

func TestOrderCreationSchema_Valid(t *testing.T) {
	body := decodeBody(t, `{"email":"a@b.com","productIds":["p1","p2"],"payment":"CASH"}`)
	if errs := orderCreationSchema.Validate(body); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrderCreationSchema_PaymentEnum(t *testing.T) {
	body := decodeBody(t, `{"email":"a@b.com","productIds":["p1"],"payment":"BITCOIN"}`)
	msgs := fieldMessages(orderCreationSchema.Validate(body))
	if msgs["payment"] != "must be one of CASH, DEBIT_CARD, CREDIT_CARD" {
		t.Errorf("payment: unexpected message %q", msgs["payment"])
	}
}

func TestOrderCreationSchema_EmptyProductIDs(t *testing.T) {
	body := decodeBody(t, `{"email":"a@b.com","productIds":[],"payment":"CASH"}`)
	msgs := fieldMessages(orderCreationSchema.Validate(body))
	if msgs["productIds"] != "must contain at least 1 item(s)" {
		t.Errorf("productIds: unexpected message %q", msgs["productIds"])
	}
}

func TestOrderCreationSchema_ProductIDsNotStrings(t *testing.T) {
	body := decodeBody(t, `{"email":"a@b.com","productIds":[1,2],"payment":"CASH"}`)
	msgs := fieldMessages(orderCreationSchema.Validate(body))
	if msgs["productIds"] != "must be an array of strings" {
		t.Errorf("productIds: unexpected message %q", msgs["productIds"])
	}
}

func TestOrderCreationSchema_NullRequiredField(t *testing.T) {
	body := decodeBody(t, `{"email":null,"productIds":["p1"],"payment":"CASH"}`)
	msgs := fieldMessages(orderCreationSchema.Validate(body))
	if msgs["email"] != "is required" {
		t.Errorf("email: unexpected message %q", msgs["email"])
	}
}

func TestOrderDeletionParams_BothPresent(t *testing.T) {
	values := url.Values{"email": {"a@b.com"}, "orderId": {"o1"}}
	if errs := orderDeletionParams.ValidateParams(values); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrderDeletionParams_MissingEither(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		fields []string
	}{
		{"missing orderId", url.Values{"email": {"a@b.com"}}, []string{"orderId"}},
		{"missing email", url.Values{"orderId": {"o1"}}, []string{"email"}},
		{"missing both", url.Values{}, []string{"email", "orderId"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := orderDeletionParams.ValidateParams(tt.values)
			if len(errs) != len(tt.fields) {
				t.Fatalf("expected %d errors, got %v", len(tt.fields), errs)
			}
			msgs := fieldMessages(errs)
			for _, f := range tt.fields {
				if msgs[f] != "is required" {
					t.Errorf("%s: unexpected message %q", f, msgs[f])
				}
			}
		})
	}
}

func TestSchemaValidate_IgnoresUnknownFields(t *testing.T) {
	body := decodeBody(t, `{"productName":"Table","code":"T-01","somethingElse":true}`)
	if errs := productSchema.Validate(body); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}
