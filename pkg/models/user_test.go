package models

import "testing"

func validAddress() ShippingAddress {
	return ShippingAddress{
		FullName:     "Ada Lovelace",
		AddressLine1: "12 Analytical Way",
		City:         "London",
		State:        "LDN",
		ZipCode:      "10001",
		Country:      "United Kingdom",
		Phone:        "5551234567",
	}
}

func TestShippingAddressValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ShippingAddress)
		wantErr bool
	}{
		{"valid address", func(a *ShippingAddress) {}, false},
		{"address line 2 is optional", func(a *ShippingAddress) { a.AddressLine2 = "Flat 3" }, false},
		{"missing full name", func(a *ShippingAddress) { a.FullName = "" }, true},
		{"whitespace full name", func(a *ShippingAddress) { a.FullName = "   " }, true},
		{"short address line", func(a *ShippingAddress) { a.AddressLine1 = "1 A" }, true},
		{"missing city", func(a *ShippingAddress) { a.City = "" }, true},
		{"missing state", func(a *ShippingAddress) { a.State = "" }, true},
		{"short zip", func(a *ShippingAddress) { a.ZipCode = "123" }, true},
		{"missing country", func(a *ShippingAddress) { a.Country = "" }, true},
		{"short phone", func(a *ShippingAddress) { a.Phone = "555123" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			tt.mutate(&addr)

			err := addr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
