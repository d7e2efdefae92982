package order

// Owner is the customer account a live order collection belongs to
type Owner struct {
	ID       string
	FullName string
	Email    string
}

// DisplayName returns the owner's full name or "Unknown"
func (o Owner) DisplayName() string {
	if o.FullName == "" {
		return "Unknown"
	}
	return o.FullName
}

// DisplayEmail returns the owner's email or "No email"
func (o Owner) DisplayEmail() string {
	if o.Email == "" {
		return "No email"
	}
	return o.Email
}
