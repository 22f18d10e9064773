package dto

// LookupCustomerRequest resolves a customer id from an email address
type LookupCustomerRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LookupCustomerResponse carries the resolved customer
type LookupCustomerResponse struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
}
